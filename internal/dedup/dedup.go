// Package dedup implements the dedup engine (spec component C10): hashing a
// tree by reusing the scan pipeline, then grouping paths by digest. This is
// the spec-mandated default: read-only reporting, no filesystem mutation.
//
// An opt-in Apply mode supplements the spec with the teacher's hardlink/
// symlink replacement engine (see apply.go), gated behind an explicit flag
// so the default behavior matches the spec's grouping-only contract.
package dedup

import (
	"os"
	"sort"

	"github.com/ivoronin/hashdog/internal/algo"
	"github.com/ivoronin/hashdog/internal/database"
	"github.com/ivoronin/hashdog/internal/herrors"
	"github.com/ivoronin/hashdog/internal/model"
	"github.com/ivoronin/hashdog/internal/progress"
	"github.com/ivoronin/hashdog/internal/scan"
)

// Options configures a dedup run.
type Options struct {
	Roots     []string
	Algorithm string
	Fast      bool
	Parallel  bool
	Workers   int
	Registry  *algo.Registry
	ErrLog    *herrors.Log
	Sink      progress.Sink
	Cancel    *model.CancelToken
}

// Group lists every path sharing one digest under the configured algorithm.
type Group struct {
	Digest string
	Paths  []string
}

// Run hashes every file under opts.Roots (via the scan pipeline, writing to
// a transient database so the C6/C7 machinery is exercised exactly as a
// scan would) and returns groups of paths sharing a digest.
func Run(opts Options) ([]Group, error) {
	tmp, err := os.CreateTemp("", "hashdog-dedup-*.txt")
	if err != nil {
		return nil, herrors.New(herrors.IoOpen, "dedup", "", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer func() { _ = os.Remove(tmpPath) }()

	w, err := database.NewWriter(tmpPath, database.LineFormat)
	if err != nil {
		return nil, err
	}

	scan.Run(scan.Options{
		Roots:      opts.Roots,
		Algorithms: []string{opts.Algorithm},
		Fast:       opts.Fast,
		Parallel:   opts.Parallel,
		Workers:    opts.Workers,
		Writer:     w,
		Registry:   opts.Registry,
		ErrLog:     opts.ErrLog,
		Sink:       opts.Sink,
		Cancel:     opts.Cancel,
	})

	if err := w.Close(); err != nil {
		return nil, err
	}

	records, _, err := database.Load(tmpPath, database.LineFormat)
	if err != nil {
		return nil, err
	}

	return groupByDigest(records), nil
}

func groupByDigest(records []database.Record) []Group {
	byDigest := make(map[string][]string)
	for _, r := range records {
		byDigest[r.HexDigest] = append(byDigest[r.HexDigest], r.Path)
	}

	var out []Group
	for digest, paths := range byDigest {
		if len(paths) < 2 {
			continue
		}
		sort.Strings(paths)
		out = append(out, Group{Digest: digest, Paths: paths})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Paths) == 0 || len(out[j].Paths) == 0 {
			return out[i].Digest < out[j].Digest
		}
		return out[i].Paths[0] < out[j].Paths[0]
	})
	return out
}

// statFileInfo builds a model.FileInfo with dev/ino/nlink populated, needed
// by Apply's source-selection logic but not by the read-only grouping path
// above.
func statFileInfo(path string) (*model.FileInfo, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, herrors.New(herrors.IoOpen, "dedup", path, err)
	}
	fi := &model.FileInfo{Path: path, Size: info.Size(), ModTime: info.ModTime()}
	fillPlatformStat(fi, info)
	return fi, nil
}
