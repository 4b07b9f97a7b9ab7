// Package digestengine streams file (or byte source) content through one or
// many digest objects in a single pass (spec component C2). It implements
// normal mode (whole file, 64 KiB chunks) and fast mode (three deterministic
// 100 MiB samples for files over the fast-mode threshold).
package digestengine

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/ivoronin/hashdog/internal/algo"
	"github.com/ivoronin/hashdog/internal/herrors"
)

// Mode selects between whole-file and sampled hashing.
type Mode int

const (
	Normal Mode = iota
	Fast
)

func (m Mode) String() string {
	if m == Fast {
		return "fast"
	}
	return "normal"
}

const (
	// blockSize is the read buffer / chunk size for normal mode, matching
	// the teacher verifier's I/O block size.
	blockSize = 64 * 1024

	// fastModeThreshold: fast mode samples only files strictly larger than
	// this; a file of this size or smaller is read whole.
	fastModeThreshold = 300 << 20 // 300 MiB

	// regionSize is the width of each fast-mode head/middle/tail sample.
	regionSize = 100 << 20 // 100 MiB

	// halfRegion is used to center the middle sample on size/2.
	halfRegion = regionSize / 2
)

// Result is the outcome of computing digests over one input.
type Result struct {
	Digests map[string]string // algorithm name -> lowercase hex digest
	Mode    Mode
	Size    int64 // bytes actually consumed
}

// region is a single byte range [Start, Start+Size) to read.
type region struct {
	Start int64
	Size  int64
}

// fastRegions returns the three deterministic sample ranges for a file of
// the given size. They are always read as three distinct ranges, never
// merged. For any size above fastModeThreshold they do not overlap: the head
// ends at 100 MiB, the middle spans size/2±50 MiB, and the tail starts at
// size-100 MiB.
func fastRegions(size int64) []region {
	mid := size / 2
	return []region{
		{Start: 0, Size: min64(regionSize, size)},
		{Start: clamp(mid-halfRegion, 0, size), Size: min64(regionSize, size)},
		{Start: max64(size-regionSize, 0), Size: min64(regionSize, size)},
	}
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// multiDigest fans a single write out to every active digest object.
type multiDigest struct {
	names   []string
	digests []algo.Digest
}

func newMultiDigest(reg *algo.Registry, names []string) (*multiDigest, error) {
	m := &multiDigest{names: names}
	for _, name := range names {
		d, err := reg.Get(name)
		if err != nil {
			return nil, herrors.New(herrors.UnknownAlgorithm, "digest", "", err)
		}
		m.digests = append(m.digests, d)
	}
	return m, nil
}

func (m *multiDigest) Write(p []byte) (int, error) {
	for _, d := range m.digests {
		d.Update(p)
	}
	return len(p), nil
}

func (m *multiDigest) finalize() map[string]string {
	out := make(map[string]string, len(m.names))
	for i, name := range m.names {
		out[name] = hex.EncodeToString(m.digests[i].Finalize())
	}
	return out
}

// ComputeFile computes digests for all named algorithms over the file at
// path, in the requested mode. Fast mode on a file <= fastModeThreshold
// degenerates to normal mode, per spec (the result must be identical).
func ComputeFile(path string, mode Mode, algos []string, reg *algo.Registry) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, herrors.New(herrors.IoOpen, "digest", path, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return Result{}, herrors.New(herrors.IoRead, "digest", path, err)
	}
	size := info.Size()

	m, err := newMultiDigest(reg, algos)
	if err != nil {
		return Result{}, err
	}

	effectiveMode := mode
	if mode == Fast && size <= fastModeThreshold {
		effectiveMode = Normal
	}

	var n int64
	if effectiveMode == Fast {
		n, err = readFastRegions(f, m, size, path)
	} else {
		n, err = readSequential(f, m, path)
	}
	if err != nil {
		return Result{}, err
	}
	if n != size && effectiveMode == Normal {
		return Result{}, herrors.New(herrors.Truncated, "digest", path,
			fmt.Errorf("read %d bytes, expected %d", n, size))
	}

	return Result{Digests: m.finalize(), Mode: mode, Size: n}, nil
}

// ComputeReader computes digests over a non-seekable stream, always in
// Normal mode (it takes no mode argument). Fast-mode requests for streams
// are rejected by ValidateMode, which callers run first.
func ComputeReader(r io.Reader, algos []string, reg *algo.Registry) (Result, error) {
	m, err := newMultiDigest(reg, algos)
	if err != nil {
		return Result{}, err
	}
	n, err := io.CopyBuffer(m, r, make([]byte, blockSize))
	if err != nil {
		return Result{}, herrors.New(herrors.IoRead, "digest", "", err)
	}
	return Result{Digests: m.finalize(), Mode: Normal, Size: n}, nil
}

// ValidateMode rejects fast mode for stream/text inputs, per spec §4.2:
// "Fast mode is disallowed for text and stream inputs."
func ValidateMode(mode Mode, seekable bool) error {
	if mode == Fast && !seekable {
		return herrors.New(herrors.UnsupportedMode, "digest", "",
			fmt.Errorf("fast mode not applicable to non-seekable input"))
	}
	return nil
}

func readSequential(f *os.File, w io.Writer, path string) (int64, error) {
	n, err := io.CopyBuffer(w, f, make([]byte, blockSize))
	if err != nil {
		return n, herrors.New(herrors.IoRead, "digest", path, err)
	}
	return n, nil
}

func readFastRegions(f *os.File, w io.Writer, size int64, path string) (int64, error) {
	var total int64
	buf := make([]byte, blockSize)
	for _, reg := range fastRegions(size) {
		if _, err := f.Seek(reg.Start, io.SeekStart); err != nil {
			return total, herrors.New(herrors.IoRead, "digest", path, err)
		}
		n, err := io.CopyBuffer(w, io.LimitReader(f, reg.Size), buf)
		total += n
		if err != nil {
			return total, herrors.New(herrors.IoRead, "digest", path, err)
		}
		if n != reg.Size {
			return total, herrors.New(herrors.Truncated, "digest", path,
				fmt.Errorf("region [%d,%d) short read: got %d bytes", reg.Start, reg.Start+reg.Size, n))
		}
	}
	return total, nil
}
