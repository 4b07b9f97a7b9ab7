package main

import (
	"runtime"
	"strings"

	"github.com/ivoronin/hashdog/internal/database"
	"github.com/ivoronin/hashdog/internal/herrors"
	"github.com/ivoronin/hashdog/internal/scan"
	"github.com/spf13/cobra"
)

type scanOptions struct {
	algorithms []string
	fast       bool
	hdd        bool
	workers    int
	dbPath     string
	format     string
	compress   bool
	noProgress bool
	jsonOut    bool
}

// newScanCmd builds the scan subcommand: walk the given roots, hash every
// matched file, and write a database.
func newScanCmd() *cobra.Command {
	opts := &scanOptions{
		algorithms: []string{"sha256"},
		workers:    runtime.NumCPU(),
		dbPath:     "hashdog.db",
		format:     "line",
	}

	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Scan one or more directory trees and record digests in a database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runScan(args, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.algorithms, "algorithm", "a", opts.algorithms, "Hash algorithm(s) to compute")
	cmd.Flags().BoolVar(&opts.fast, "fast", false, "Use fast sampled hashing for files over the threshold")
	cmd.Flags().BoolVar(&opts.hdd, "hdd", false, "Sequential scheduling, single worker (avoids seek-thrash on mechanical drives)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", opts.workers, "Number of parallel workers")
	cmd.Flags().StringVar(&opts.dbPath, "db", opts.dbPath, "Output database path")
	cmd.Flags().StringVar(&opts.format, "format", opts.format, "Database format: line or hashdeep")
	cmd.Flags().BoolVar(&opts.compress, "compress", false, "Write the database as a transparent .xz stream")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable progress output")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Emit JSON instead of text")

	return cmd
}

func runScan(roots []string, opts *scanOptions) error {
	format, err := parseFormat(opts.format)
	if err != nil {
		return fail(exitUsage, err)
	}

	dbPath := opts.dbPath
	if opts.compress && !strings.HasSuffix(dbPath, ".xz") {
		dbPath += ".xz"
	}

	writer, err := database.NewWriter(dbPath, format)
	if err != nil {
		return failHerror(err)
	}

	errLog := herrors.NewLog(0)
	stats := scan.Run(scan.Options{
		Roots:      roots,
		Algorithms: opts.algorithms,
		Fast:       opts.fast,
		Parallel:   !opts.hdd,
		Workers:    opts.workers,
		Writer:     writer,
		Registry:   sharedRegistry,
		ErrLog:     errLog,
		Sink:       sinkFor(opts.jsonOut, opts.noProgress),
	})

	if err := writer.Close(); err != nil {
		return failHerror(err)
	}

	if opts.jsonOut {
		return printJSON(struct {
			FilesProcessed int64           `json:"files_processed"`
			FilesFailed    int64           `json:"files_failed"`
			TotalBytes     int64           `json:"total_bytes"`
			Errors         []*herrors.Error `json:"errors"`
		}{
			FilesProcessed: stats.FilesProcessed.Load(),
			FilesFailed:    stats.FilesFailed.Load(),
			TotalBytes:     stats.TotalBytes.Load(),
			Errors:         errLog.Entries(),
		})
	}
	return nil
}

func parseFormat(s string) (database.Format, error) {
	switch strings.ToLower(s) {
	case "", "line":
		return database.LineFormat, nil
	case "hashdeep":
		return database.HashdeepFormat, nil
	default:
		return 0, herrors.New(herrors.FormatMismatch, "scan", "", errUnknownFormat(s))
	}
}

type errUnknownFormat string

func (e errUnknownFormat) Error() string { return "unknown database format: " + string(e) }
