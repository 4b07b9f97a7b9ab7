// Package database implements the database codec (spec component C6):
// readers and writers for the two on-disk hash record formats (a
// whitespace-delimited line format and a hashdeep CSV profile), with
// transparent LZMA wrapping for paths ending in ".xz".
package database

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/ivoronin/hashdog/internal/herrors"
)

// Format identifies one of the two on-disk record formats.
type Format int

const (
	LineFormat Format = iota
	HashdeepFormat
)

func (f Format) String() string {
	if f == HashdeepFormat {
		return "hashdeep"
	}
	return "line"
}

// Record is one hash entry: path -> {hex_digest, algorithm, mode, size?}.
// Size is only populated when read from, or destined for, the hashdeep
// format.
type Record struct {
	Path      string
	HexDigest string
	Algorithm string
	Mode      string // "normal" or "fast"; empty implies normal (hashdeep has no mode column)
	Size      int64
	HasSize   bool
}

const hashdeepMagic = "%%%% HASHDEEP-1.0"

// isCompressed reports whether path's final extension calls for transparent
// LZMA wrapping.
func isCompressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xz")
}

// openReader opens path for reading, transparently unwrapping an XZ stream
// when the path ends in .xz. The compressed input is streamed to the parser
// rather than fully decompressed into memory first.
func openReader(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, herrors.New(herrors.DatabaseMissing, "database.read", path, err)
		}
		return nil, herrors.New(herrors.IoOpen, "database.read", path, err)
	}
	if !isCompressed(path) {
		return f, nil
	}
	xr, err := xz.NewReader(bufio.NewReader(f))
	if err != nil {
		_ = f.Close()
		return nil, herrors.New(herrors.FormatMismatch, "database.read", path, err)
	}
	return &xzReadCloser{r: xr, underlying: f}, nil
}

// xzReadCloser adapts an xz.Reader (which has no Close) to io.ReadCloser by
// closing the underlying file handle.
type xzReadCloser struct {
	r          *xz.Reader
	underlying *os.File
}

func (x *xzReadCloser) Read(p []byte) (int, error) { return x.r.Read(p) }
func (x *xzReadCloser) Close() error                { return x.underlying.Close() }

// Load reads every record from path in the given format. Lines that don't
// match the format are skipped and counted, never aborting the load; a
// missing file, unreadable stream, or malformed header is fatal.
func Load(path string, format Format) (records []Record, skipped int, err error) {
	r, err := openReader(path)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = r.Close() }()

	switch format {
	case HashdeepFormat:
		return readHashdeep(path, r)
	default:
		return readLine(path, r)
	}
}

// readLine parses the whitespace-delimited line format:
// "<hex>  <algorithm>  <mode>  <path>\n", fields separated by exactly two
// spaces except the path, which extends to end of line and may itself
// contain spaces.
func readLine(path string, r io.Reader) ([]Record, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)

	var records []Record
	skipped := 0
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, ok := parseLine(line)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, herrors.New(herrors.IoRead, "database.read", path, err)
	}
	return records, skipped, nil
}

// parseLine splits on the first three double-space runs: hex, algorithm,
// mode, then path (which may contain further double spaces untouched).
func parseLine(line string) (Record, bool) {
	const sep = "  "

	i1 := strings.Index(line, sep)
	if i1 < 0 {
		return Record{}, false
	}
	hex := line[:i1]
	rest := line[i1+len(sep):]

	i2 := strings.Index(rest, sep)
	if i2 < 0 {
		return Record{}, false
	}
	algorithm := rest[:i2]
	rest = rest[i2+len(sep):]

	i3 := strings.Index(rest, sep)
	if i3 < 0 {
		return Record{}, false
	}
	mode := rest[:i3]
	p := rest[i3+len(sep):]

	if hex == "" || algorithm == "" || mode == "" || p == "" {
		return Record{}, false
	}
	return Record{Path: p, HexDigest: hex, Algorithm: algorithm, Mode: mode}, true
}

// readHashdeep parses the hashdeep CSV profile. Readers tolerate both the
// presence and absence of the "%%%% HASHDEEP-1.0" / "%%%% size,alg,filename"
// header lines and any "## ..." invocation-comment lines.
func readHashdeep(path string, r io.Reader) ([]Record, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)

	var records []Record
	skipped := 0
	algColumns := []string{"md5"} // default if no %%%% size,... header seen
	sawHeader := false

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "%%%% HASHDEEP") {
			sawHeader = true
			continue
		}
		if strings.HasPrefix(trimmed, "%%%%") {
			cols, err := parseHashdeepColumnHeader(trimmed)
			if err != nil {
				return nil, 0, herrors.New(herrors.FormatMismatch, "database.read", path, err)
			}
			algColumns = cols
			sawHeader = true
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			continue // invocation comment
		}

		fields := splitCSV(line)
		// size,hash[,hash...],filename
		if len(fields) < 3 {
			skipped++
			continue
		}
		size, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			skipped++
			continue
		}
		nHash := len(fields) - 2
		if nHash != len(algColumns) {
			skipped++
			continue
		}
		p := fields[len(fields)-1]
		// Multi-hash rows: emit one record per declared algorithm column,
		// all sharing path and size (spec Open Question: treat the classic
		// single-column form as the 1-column case of this).
		for i := 0; i < nHash; i++ {
			records = append(records, Record{
				Path:      p,
				HexDigest: fields[1+i],
				Algorithm: algColumns[i],
				Size:      size,
				HasSize:   true,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, herrors.New(herrors.IoRead, "database.read", path, err)
	}
	_ = sawHeader // tolerated whether present or absent, per spec
	return records, skipped, nil
}

// parseHashdeepColumnHeader parses "%%%% size,sha256,filename" into the
// ordered list of hash algorithm column names between "size" and "filename".
func parseHashdeepColumnHeader(line string) ([]string, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "%%%%"))
	cols := strings.Split(rest, ",")
	if len(cols) < 3 || cols[0] != "size" || cols[len(cols)-1] != "filename" {
		return nil, fmt.Errorf("malformed hashdeep column header: %q", line)
	}
	return cols[1 : len(cols)-1], nil
}

// splitCSV splits a hashdeep record line on commas, field 1 count+2 is
// filename which must not itself contain commas in this format (hashdeep
// does not quote filenames).
func splitCSV(line string) []string {
	return strings.Split(line, ",")
}

// Writer serializes records to a database file, optionally wrapping the
// output in an XZ stream. Writes go to a temp file in the destination
// directory and are renamed into place atomically on Close, so a database
// never ends up containing a partial record.
type Writer struct {
	format    Format
	finalPath string
	tmpPath   string
	file      *os.File
	xzw       *xz.Writer
	bw        *bufio.Writer
	algorithm string // hashdeep header algorithm name, set by first WriteRecord
	wroteHdr  bool
}

// NewWriter opens a staging file for path. Compression is chosen
// automatically from path's ".xz" suffix.
func NewWriter(path string, format Format) (*Writer, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".hashdog-db-*.tmp")
	if err != nil {
		return nil, herrors.New(herrors.IoOpen, "database.write", path, err)
	}

	w := &Writer{format: format, finalPath: path, tmpPath: tmp.Name(), file: tmp}

	var dest io.Writer = tmp
	if isCompressed(path) {
		xzw, err := xz.NewWriter(tmp)
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
			return nil, herrors.New(herrors.IoWrite, "database.write", path, err)
		}
		w.xzw = xzw
		dest = xzw
	}
	w.bw = bufio.NewWriter(dest)
	return w, nil
}

// WriteRecord appends one record. For the hashdeep format the column header
// is written lazily from the first record's algorithm.
func (w *Writer) WriteRecord(r Record) error {
	switch w.format {
	case HashdeepFormat:
		if !w.wroteHdr {
			w.algorithm = r.Algorithm
			if _, err := fmt.Fprintf(w.bw, "%s\n%%%%%%%% size,%s,filename\n", hashdeepMagic, r.Algorithm); err != nil {
				return w.writeErr(err)
			}
			w.wroteHdr = true
		}
		if _, err := fmt.Fprintf(w.bw, "%d,%s,%s\n", r.Size, r.HexDigest, r.Path); err != nil {
			return w.writeErr(err)
		}
	default:
		if _, err := fmt.Fprintf(w.bw, "%s  %s  %s  %s\n", r.HexDigest, r.Algorithm, r.Mode, r.Path); err != nil {
			return w.writeErr(err)
		}
	}
	return nil
}

func (w *Writer) writeErr(err error) error {
	return herrors.New(herrors.IoWrite, "database.write", w.finalPath, err)
}

// Close flushes, finalizes any XZ stream, and atomically renames the staging
// file into place. On any failure the staging file is removed rather than
// left behind.
func (w *Writer) Close() error {
	if err := w.bw.Flush(); err != nil {
		w.abort()
		return w.writeErr(err)
	}
	if w.xzw != nil {
		if err := w.xzw.Close(); err != nil {
			w.abort()
			return w.writeErr(err)
		}
	}
	if err := w.file.Close(); err != nil {
		w.abort()
		return w.writeErr(err)
	}
	if err := os.Rename(w.tmpPath, w.finalPath); err != nil {
		w.abort()
		return w.writeErr(err)
	}
	return nil
}

func (w *Writer) abort() {
	_ = w.file.Close()
	_ = os.Remove(w.tmpPath)
}

// WriteAll is a convenience wrapper for callers that already hold every
// record in memory, unlike the streaming Scan pipeline, which calls
// WriteRecord as records arrive.
func WriteAll(path string, format Format, records []Record) error {
	w, err := NewWriter(path, format)
	if err != nil {
		return err
	}
	for _, r := range records {
		if err := w.WriteRecord(r); err != nil {
			return err
		}
	}
	return w.Close()
}
