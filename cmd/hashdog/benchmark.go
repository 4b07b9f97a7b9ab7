package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/ivoronin/hashdog/internal/benchmark"
	"github.com/spf13/cobra"
)

type benchmarkOptions struct {
	algorithms []string
	sizeStr    string
	jsonOut    bool
}

// newBenchmarkCmd builds the benchmark subcommand (component C11): one pass
// per algorithm over a single pseudo-random in-memory buffer, reporting
// throughput in decimal MB/s.
func newBenchmarkCmd() *cobra.Command {
	opts := &benchmarkOptions{sizeStr: "100M"}

	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Benchmark every registered algorithm against an in-memory buffer",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runBenchmark(opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.algorithms, "algorithm", "a", nil, "Algorithms to benchmark (default: all registered)")
	cmd.Flags().StringVar(&opts.sizeStr, "size", opts.sizeStr, "Buffer size (e.g. 100M, 1G)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Emit JSON instead of text")

	return cmd
}

func runBenchmark(opts *benchmarkOptions) error {
	size, err := humanize.ParseBytes(opts.sizeStr)
	if err != nil {
		return fail(exitUsage, fmt.Errorf("invalid --size: %w", err))
	}

	algorithms := opts.algorithms
	if len(algorithms) == 0 {
		for _, d := range sharedRegistry.List() {
			algorithms = append(algorithms, d.Name)
		}
	}

	results, err := benchmark.Run(sharedRegistry, algorithms, int64(size))
	if err != nil {
		return failHerror(err)
	}

	if opts.jsonOut {
		return printJSON(results)
	}
	for _, r := range results {
		fmt.Println(r.String())
	}
	return nil
}
