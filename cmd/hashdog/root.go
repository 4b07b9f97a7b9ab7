package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree: a default bare-hash behavior (spec §6:
// "default (hash)") plus the scan/verify/compare/dedup/benchmark/list
// subcommands. Every subcommand gets --json, bound the way the teacher's
// newDedupeCmd binds dedupeOptions.
func newRootCmd() *cobra.Command {
	opts := &hashOptions{algorithm: "sha256"}

	root := &cobra.Command{
		Use:     "hashdog [paths...]",
		Short:   "Compute, store, and verify cryptographic digests over files and trees",
		Version: version + " (" + commit + ")",
		Args:    cobra.ArbitraryArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			return runHash(args, opts)
		},
	}

	bindHashFlags(root, opts)

	children := []*cobra.Command{
		newScanCmd(), newVerifyCmd(), newCompareCmd(), newDedupCmd(), newBenchmarkCmd(), newListCmd(),
	}
	for _, c := range children {
		// Every RunE here already prints its own error/JSON; cobra's default
		// "Error: ..." plus usage dump would just be noise on top of that.
		c.SilenceErrors = true
		c.SilenceUsage = true
		root.AddCommand(c)
	}
	root.SilenceErrors = true
	root.SilenceUsage = true

	return root
}
