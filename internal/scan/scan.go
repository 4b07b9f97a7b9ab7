// Package scan implements the scan pipeline (spec component C7): a parallel
// directory walk feeding a worker pool that hashes each file via
// internal/digestengine and forwards records to a single writer goroutine
// owned by internal/database.
//
// # Concurrency model
//
// The pipeline has three concurrent stages, mirroring the teacher
// scanner's fan-out/fan-in walk with an added hash-and-write stage:
//
//  1. WALKER GOROUTINES (fan-out) — one per directory, semaphore-limited,
//     enumerate regular files and feed them to a bounded file channel.
//  2. WORKER POOL (parallel mode: CPU-sized; hdd mode: exactly one) —
//     consumes files, hashes via C2, sends records to a single writer
//     channel.
//  3. WRITER GOROUTINE (single) — the sole owner of the C6 database.Writer,
//     serializing all writes.
package scan

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ivoronin/hashdog/internal/algo"
	"github.com/ivoronin/hashdog/internal/database"
	"github.com/ivoronin/hashdog/internal/digestengine"
	"github.com/ivoronin/hashdog/internal/herrors"
	"github.com/ivoronin/hashdog/internal/ignore"
	"github.com/ivoronin/hashdog/internal/model"
	"github.com/ivoronin/hashdog/internal/progress"
)

// Options configures a scan run.
type Options struct {
	Roots      []string // directories to scan
	Algorithms []string
	Fast       bool
	Parallel   bool // false selects hdd (sequential) mode
	Workers    int  // 0 = runtime.GOMAXPROCS(0)
	Writer     *database.Writer
	Registry   *algo.Registry
	ErrLog     *herrors.Log
	Sink       progress.Sink
	Cancel     *model.CancelToken
}

// Stats tracks scan progress with atomic counters updated concurrently by
// every worker; String() takes a consistent-enough snapshot for display.
type Stats struct {
	FilesProcessed atomic.Int64
	FilesFailed    atomic.Int64
	TotalBytes     atomic.Int64
	startTime      time.Time
}

func (s *Stats) String() string {
	elapsed := time.Since(s.startTime).Truncate(time.Millisecond)
	return humanize.IBytes(uint64(s.TotalBytes.Load())) + " hashed, " +
		humanize.Comma(s.FilesProcessed.Load()) + " files processed, " +
		humanize.Comma(s.FilesFailed.Load()) + " failed in " + elapsed.String()
}

// walkerSemSize bounds concurrent directory reads the same way the teacher
// scanner bounds them: one semaphore shared across all walker goroutines.
const walkerSemSize = 64

// Run walks every root, hashes matched files, and writes records through
// opts.Writer. It returns final statistics once the pipeline has fully
// drained.
func Run(opts Options) *Stats {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if !opts.Parallel {
		workers = 1 // hdd mode: single worker, sequential, avoids seek-thrash
	}

	sink := opts.Sink
	if sink == nil {
		sink = progress.NullSink{}
	}

	stats := &Stats{startTime: time.Now()}
	sink.Start(-1)

	fileCh := make(chan *model.FileInfo, 1000)
	recordCh := make(chan database.Record, 1000)

	var walkerWg sync.WaitGroup
	walkerSem := model.NewSemaphore(walkerSemSize)

	for _, root := range opts.Roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			opts.sendErr(herrors.New(herrors.IoOpen, "scan", root, err))
			continue
		}
		matcher, err := ignore.LoadForRoot(abs)
		if err != nil {
			opts.sendErr(err)
			continue
		}
		walkDirectory(abs, abs, matcher, &walkerWg, walkerSem, fileCh, opts)
	}

	go func() {
		walkerWg.Wait()
		close(fileCh)
	}()

	var workerWg sync.WaitGroup
	for i := 0; i < workers; i++ {
		workerWg.Add(1)
		go func() {
			defer workerWg.Done()
			for f := range fileCh {
				if opts.Cancel != nil && opts.Cancel.Cancelled() {
					continue
				}
				processFile(f, recordCh, stats, sink, opts)
			}
		}()
	}

	go func() {
		workerWg.Wait()
		close(recordCh)
	}()

	// Writer goroutine: the single owner of opts.Writer, per spec's
	// "single-writer channel owned by C6".
	for rec := range recordCh {
		if err := opts.Writer.WriteRecord(rec); err != nil {
			opts.sendErr(err)
		}
	}

	sink.Finish(stats)
	return stats
}

func (o Options) sendErr(err error) {
	if o.ErrLog != nil {
		o.ErrLog.Add(err)
	}
}

// walkDirectory recursively enumerates dir, sending regular, non-ignored
// files to fileCh. scanRoot is used to compute ignore-matcher-relative
// paths; matcher composes every .hashignore from the filesystem root down
// to scanRoot (loaded once per scan root, not reloaded per directory).
func walkDirectory(scanRoot, dir string, matcher *ignore.Matcher, wg *sync.WaitGroup, sem model.Semaphore, fileCh chan<- *model.FileInfo, opts Options) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		sem.Acquire()
		defer sem.Release()

		entries, err := os.ReadDir(dir)
		if err != nil {
			opts.sendErr(herrors.New(herrors.IoOpen, "scan", dir, err))
			return
		}

		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())
			rel, relErr := filepath.Rel(scanRoot, full)
			if relErr != nil {
				rel = full
			}

			if entry.IsDir() {
				if matcher.ShouldIgnore(rel, true) {
					continue
				}
				walkDirectory(scanRoot, full, matcher, wg, sem, fileCh, opts)
				continue
			}

			if entry.Name() == ".hashignore" {
				continue
			}
			if !entry.Type().IsRegular() {
				continue // no symlink following by default
			}
			if matcher.ShouldIgnore(rel, false) {
				continue
			}

			info, err := entry.Info()
			if err != nil {
				opts.sendErr(herrors.New(herrors.IoOpen, "scan", full, err))
				continue
			}
			fileCh <- &model.FileInfo{Path: full, Size: info.Size(), ModTime: info.ModTime()}
		}
	}()
}

func processFile(f *model.FileInfo, recordCh chan<- database.Record, stats *Stats, sink progress.Sink, opts Options) {
	mode := digestengine.Normal
	if opts.Fast {
		mode = digestengine.Fast
	}

	result, err := digestengine.ComputeFile(f.Path, mode, opts.Algorithms, opts.Registry)
	if err != nil {
		stats.FilesFailed.Add(1)
		opts.sendErr(err)
		return
	}

	stats.FilesProcessed.Add(1)
	stats.TotalBytes.Add(result.Size)
	sink.Tick(stats.FilesProcessed.Load(), stats.TotalBytes.Load(), f.Path)

	for _, name := range opts.Algorithms {
		recordCh <- database.Record{
			Path:      f.Path,
			HexDigest: result.Digests[name],
			Algorithm: name,
			Mode:      result.Mode.String(),
		}
	}
}
