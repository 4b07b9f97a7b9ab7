package main

import (
	"fmt"

	"github.com/ivoronin/hashdog/internal/compare"
	"github.com/ivoronin/hashdog/internal/database"
	"github.com/spf13/cobra"
)

type compareOptions struct {
	oldPath, oldFormat string
	newPath, newFormat string
	jsonOut            bool
}

// newCompareCmd builds the compare subcommand: a two-database diff plus
// within-database duplicate detection.
func newCompareCmd() *cobra.Command {
	opts := &compareOptions{oldFormat: "line", newFormat: "line"}

	cmd := &cobra.Command{
		Use:   "compare --old <path> --new <path>",
		Short: "Diff two databases, or find duplicates within one",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runCompare(opts)
		},
	}

	cmd.Flags().StringVar(&opts.oldPath, "old", "", "Older database path (required)")
	cmd.Flags().StringVar(&opts.oldFormat, "old-format", opts.oldFormat, "Older database format: line or hashdeep")
	cmd.Flags().StringVar(&opts.newPath, "new", "", "Newer database path; if omitted, only duplicate detection runs against --old")
	cmd.Flags().StringVar(&opts.newFormat, "new-format", opts.newFormat, "Newer database format: line or hashdeep")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Emit JSON instead of text")
	_ = cmd.MarkFlagRequired("old")

	return cmd
}

func runCompare(opts *compareOptions) error {
	oldFormat, err := parseFormat(opts.oldFormat)
	if err != nil {
		return fail(exitUsage, err)
	}

	if opts.newPath == "" {
		return runFindDuplicates(opts.oldPath, oldFormat, opts.jsonOut)
	}

	newFormat, err := parseFormat(opts.newFormat)
	if err != nil {
		return fail(exitUsage, err)
	}

	diff, err := compare.Compare(opts.oldPath, oldFormat, opts.newPath, newFormat)
	if err != nil {
		return failHerror(err)
	}

	if opts.jsonOut {
		if err := printJSON(diff); err != nil {
			return failHerror(err)
		}
	} else {
		fmt.Printf("unchanged=%d changed=%d removed=%d added=%d\n",
			len(diff.Unchanged), len(diff.Changed), len(diff.Removed), len(diff.Added))
	}

	if len(diff.Changed) > 0 || len(diff.Removed) > 0 || len(diff.Added) > 0 {
		return exitError(exitLogical)
	}
	return nil
}

func runFindDuplicates(dbPath string, format database.Format, jsonOut bool) error {
	records, _, err := database.Load(dbPath, format)
	if err != nil {
		return failHerror(err)
	}

	dups := compare.FindDuplicates(records)
	if jsonOut {
		if err := printJSON(dups); err != nil {
			return failHerror(err)
		}
	} else {
		for _, d := range dups {
			fmt.Printf("%s %s: %d paths\n", d.Algorithm, d.Digest, len(d.Paths))
		}
	}
	if len(dups) > 0 {
		return exitError(exitLogical)
	}
	return nil
}
