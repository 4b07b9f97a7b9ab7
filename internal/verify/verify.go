// Package verify implements the verify pipeline (spec component C8): load a
// database through internal/database, walk a directory, re-hash each file
// with internal/digestengine using the algorithm/mode recorded for it, and
// classify every path as a match, mismatch, missing, or new.
package verify

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"sync"

	"github.com/ivoronin/hashdog/internal/algo"
	"github.com/ivoronin/hashdog/internal/database"
	"github.com/ivoronin/hashdog/internal/digestengine"
	"github.com/ivoronin/hashdog/internal/herrors"
	"github.com/ivoronin/hashdog/internal/pathcache"
	"github.com/ivoronin/hashdog/internal/progress"
)

// Options configures a verify run.
type Options struct {
	DBPath     string
	Format     database.Format
	Root       string
	Parallel   bool // false selects hdd (sequential) mode; Parallel is the spec default
	Workers    int
	Registry   *algo.Registry
	Paths      *pathcache.Cache
	ErrLog     *herrors.Log
	Sink       progress.Sink
}

// Mismatch records a path whose re-hashed digest differs from the database.
type Mismatch struct {
	Path     string
	Expected string
	Actual   string
}

// Report is the verify outcome: deterministic, sorted by path, satisfying
// the partition laws "matches ⊎ |mismatches| ⊎ |missing| = |DB keys|" and
// "matches ⊎ |mismatches| ⊎ |new| = |files under root|". A file in the
// database whose re-hash fails is logged to ErrLog and counted in none of
// the four sets, so both sums fall short by the number of such failures.
type Report struct {
	Matches    int
	Mismatches []Mismatch
	Missing    []string
	New        []string
}

// dbEntry is a loaded database record keyed by its canonicalized path.
type dbEntry struct {
	record   database.Record
	observed bool
}

// Run loads opts.DBPath, walks opts.Root, and returns a verify Report.
func Run(opts Options) (Report, error) {
	records, skipped, err := database.Load(opts.DBPath, opts.Format)
	if err != nil {
		return Report{}, err
	}
	if skipped > 0 && opts.ErrLog != nil {
		opts.ErrLog.Add(herrors.New(herrors.ParseLine, "verify", opts.DBPath, nil))
	}

	paths := opts.Paths
	if paths == nil {
		paths = pathcache.New()
	}

	byPath := make(map[string]*dbEntry, len(records))
	for _, r := range records {
		canon, cerr := canonicalizeDBPath(paths, opts.Root, r.Path)
		if cerr != nil {
			// Unresolvable DB path (e.g. already deleted) still counts
			// toward "missing" once the walk completes; key on the raw
			// stored path as a fallback so it is still tracked.
			canon = r.Path
		}
		byPath[canon] = &dbEntry{record: r}
	}

	sink := opts.Sink
	if sink == nil {
		sink = progress.NullSink{}
	}
	sink.Start(-1)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if !opts.Parallel {
		workers = 1
	}

	type walked struct {
		canon string
		path  string
	}
	fileCh := make(chan walked, 1000)

	go func() {
		defer close(fileCh)
		_ = filepath.Walk(opts.Root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				opts.sendErr(herrors.New(herrors.IoOpen, "verify", path, err))
				return nil
			}
			if info.IsDir() || !info.Mode().IsRegular() {
				return nil
			}
			canon, cerr := paths.Canonicalize(path)
			if cerr != nil {
				canon = path
			}
			fileCh <- walked{canon: canon, path: path}
			return nil
		})
	}()

	var mu sync.Mutex
	var mismatches []Mismatch
	var newPaths []string
	matches := 0
	var filesDone int64

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for w := range fileCh {
				entry, ok := byPath[w.canon]
				if !ok {
					mu.Lock()
					newPaths = append(newPaths, w.path)
					mu.Unlock()
					continue
				}
				entry.observed = true

				mode := digestengine.Normal
				if entry.record.Mode == "fast" {
					mode = digestengine.Fast
				}
				result, herr := digestengine.ComputeFile(w.path, mode, []string{entry.record.Algorithm}, opts.Registry)
				mu.Lock()
				filesDone++
				sink.Tick(filesDone, result.Size, w.path)
				mu.Unlock()
				if herr != nil {
					opts.sendErr(herr)
					continue
				}
				actual := result.Digests[entry.record.Algorithm]
				if actual == entry.record.HexDigest {
					mu.Lock()
					matches++
					mu.Unlock()
				} else {
					mu.Lock()
					mismatches = append(mismatches, Mismatch{Path: w.path, Expected: entry.record.HexDigest, Actual: actual})
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	var missing []string
	for _, e := range byPath {
		if !e.observed {
			missing = append(missing, e.record.Path)
		}
	}

	sort.Slice(mismatches, func(i, j int) bool { return mismatches[i].Path < mismatches[j].Path })
	sort.Strings(missing)
	sort.Strings(newPaths)

	report := Report{Matches: matches, Mismatches: mismatches, Missing: missing, New: newPaths}
	sink.Finish(report)
	return report, nil
}

func (o Options) sendErr(err error) {
	if o.ErrLog != nil {
		o.ErrLog.Add(err)
	}
}

// canonicalizeDBPath resolves a database-stored path the same way a
// filesystem walk would resolve it, so that keys compare equal: relative
// stored paths are resolved against root before canonicalization.
func canonicalizeDBPath(paths *pathcache.Cache, root, stored string) (string, error) {
	p := stored
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	return paths.Canonicalize(p)
}

// String renders a one-line human summary, satisfying fmt.Stringer for the
// progress sink's Finish call.
func (r Report) String() string {
	return "verify: " + strconv.Itoa(r.Matches) + " matches, " +
		strconv.Itoa(len(r.Mismatches)) + " mismatches, " +
		strconv.Itoa(len(r.Missing)) + " missing, " +
		strconv.Itoa(len(r.New)) + " new"
}
