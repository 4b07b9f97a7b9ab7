// Package progress adapts github.com/schollz/progressbar/v3 to the sink
// interface consumed by the scan and verify pipelines: start, tick, finish.
package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

const updateInterval = 50 * time.Millisecond

// Sink is the progress collaborator the scan/verify pipelines depend on.
// Start is called once with the known file count (or -1 if unknown, which
// renders as a spinner). Tick is called as work completes. Finish is called
// exactly once at the end with a final summary.
type Sink interface {
	Start(totalFiles int64)
	Tick(filesDone, bytesDone int64, currentPath string)
	Finish(summary fmt.Stringer)
}

// Bar is a terminal progress sink wrapping progressbar.ProgressBar.
// All methods are no-ops before Start is called.
type Bar struct {
	bar *progressbar.ProgressBar
}

// NewBar creates a terminal progress sink.
func NewBar() *Bar {
	return &Bar{}
}

func (b *Bar) Start(totalFiles int64) {
	opts := []progressbar.Option{
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(updateInterval),
		progressbar.OptionClearOnFinish(),
	}
	if totalFiles < 0 {
		opts = append(opts,
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetElapsedTime(false),
		)
		b.bar = progressbar.NewOptions(-1, opts...)
		return
	}
	opts = append(opts, progressbar.OptionSetWidth(40))
	b.bar = progressbar.NewOptions64(totalFiles, opts...)
}

func (b *Bar) Tick(filesDone, _ int64, currentPath string) {
	if b.bar == nil {
		return
	}
	_ = b.bar.Set64(filesDone)
	b.bar.Describe(currentPath)
}

func (b *Bar) Finish(summary fmt.Stringer) {
	if b.bar == nil {
		return
	}
	_ = b.bar.Finish()
	fmt.Fprintln(os.Stderr, "✔ "+summary.String())
}

// NullSink discards all progress events. Used in --json mode and tests,
// where progress output would corrupt the machine-readable stream.
type NullSink struct{}

func (NullSink) Start(int64)               {}
func (NullSink) Tick(int64, int64, string) {}
func (NullSink) Finish(fmt.Stringer)       {}

var (
	_ Sink = (*Bar)(nil)
	_ Sink = NullSink{}
)
