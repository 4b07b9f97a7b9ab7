package main

import (
	"fmt"
	"runtime"

	"github.com/ivoronin/hashdog/internal/herrors"
	"github.com/ivoronin/hashdog/internal/pathcache"
	"github.com/ivoronin/hashdog/internal/verify"
	"github.com/spf13/cobra"
)

type verifyOptions struct {
	dbPath     string
	format     string
	root       string
	hdd        bool
	workers    int
	noProgress bool
	jsonOut    bool
}

// newVerifyCmd builds the verify subcommand: load a database, re-walk its
// root, and classify matches/mismatches/missing/new. Exit code 1 on any
// mismatch or missing entry, per spec §6.
func newVerifyCmd() *cobra.Command {
	opts := &verifyOptions{
		format:  "line",
		root:    ".",
		workers: runtime.NumCPU(),
	}

	cmd := &cobra.Command{
		Use:   "verify --db <path>",
		Short: "Verify a directory tree against a previously recorded database",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runVerify(opts)
		},
	}

	cmd.Flags().StringVar(&opts.dbPath, "db", "", "Database path to verify against (required)")
	cmd.Flags().StringVar(&opts.format, "format", opts.format, "Database format: line or hashdeep")
	cmd.Flags().StringVar(&opts.root, "root", opts.root, "Root directory to re-walk")
	cmd.Flags().BoolVar(&opts.hdd, "hdd", false, "Sequential scheduling, single worker")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", opts.workers, "Number of parallel workers")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable progress output")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Emit JSON instead of text")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runVerify(opts *verifyOptions) error {
	format, err := parseFormat(opts.format)
	if err != nil {
		return fail(exitUsage, err)
	}

	errLog := herrors.NewLog(0)
	report, err := verify.Run(verify.Options{
		DBPath:   opts.dbPath,
		Format:   format,
		Root:     opts.root,
		Parallel: !opts.hdd,
		Workers:  opts.workers,
		Registry: sharedRegistry,
		Paths:    pathcache.New(),
		ErrLog:   errLog,
		Sink:     sinkFor(opts.jsonOut, opts.noProgress),
	})
	if err != nil {
		return failHerror(err)
	}

	if opts.jsonOut {
		if err := printJSON(struct {
			Matches    int                `json:"matches"`
			Mismatches []verify.Mismatch  `json:"mismatches"`
			Missing    []string           `json:"missing"`
			New        []string           `json:"new"`
			Errors     []*herrors.Error   `json:"errors"`
		}{
			Matches:    report.Matches,
			Mismatches: report.Mismatches,
			Missing:    report.Missing,
			New:        report.New,
			Errors:     errLog.Entries(),
		}); err != nil {
			return failHerror(err)
		}
	} else {
		fmt.Println(report.String())
	}

	if len(report.Mismatches) > 0 || len(report.Missing) > 0 {
		return exitError(exitLogical)
	}
	return nil
}
