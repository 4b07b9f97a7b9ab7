// Package benchmark implements the benchmark engine (spec component C11):
// fill a pseudo-random buffer once, feed it through each registered digest
// exactly once, and report throughput. No I/O is involved.
package benchmark

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/ivoronin/hashdog/internal/algo"
	"github.com/ivoronin/hashdog/internal/herrors"
)

// defaultSize matches the 100 MiB default buffer size.
const defaultSize = 100 << 20

const megabyte = 1_000_000 // decimal megabytes, per the MB/s report format

// Result is the outcome of benchmarking one algorithm.
type Result struct {
	Algorithm string
	Size      int64
	Elapsed   time.Duration
	MBPerSec  float64
}

func (r Result) String() string {
	return fmt.Sprintf("%-10s %8.2f MB/s", r.Algorithm, r.MBPerSec)
}

// Run generates one pseudo-random buffer of size bytes (defaultSize if
// size<=0) and benchmarks every algorithm named, in the order given.
func Run(registry *algo.Registry, algorithms []string, size int64) ([]Result, error) {
	if size <= 0 {
		size = defaultSize
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("benchmark: generating buffer: %w", err)
	}

	results := make([]Result, 0, len(algorithms))
	for _, name := range algorithms {
		result, err := runOne(registry, name, buf)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func runOne(registry *algo.Registry, name string, buf []byte) (Result, error) {
	digest, err := registry.Get(name)
	if err != nil {
		return Result{}, herrors.New(herrors.UnknownAlgorithm, "benchmark", name, err)
	}

	start := time.Now()
	digest.Update(buf)
	_ = digest.Finalize()
	elapsed := time.Since(start)

	mbps := 0.0
	if elapsed > 0 {
		mbps = float64(len(buf)) / megabyte / elapsed.Seconds()
	}

	return Result{
		Algorithm: name,
		Size:      int64(len(buf)),
		Elapsed:   elapsed,
		MBPerSec:  mbps,
	}, nil
}
