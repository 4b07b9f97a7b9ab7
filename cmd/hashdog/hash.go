package main

import (
	"fmt"
	"os"

	"github.com/ivoronin/hashdog/internal/digestengine"
	"github.com/ivoronin/hashdog/internal/wildcard"
	"github.com/spf13/cobra"
)

// hashOptions holds the flags for the default bare-hash behavior.
type hashOptions struct {
	algorithm string
	fast      bool
	jsonOut   bool
}

func bindHashFlags(cmd *cobra.Command, opts *hashOptions) {
	cmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a", opts.algorithm, "Hash algorithm to use")
	cmd.Flags().BoolVar(&opts.fast, "fast", false, "Use fast sampled hashing for large files")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Emit JSON instead of text")
}

// hashLine is one JSON record for the default hash behavior.
type hashLine struct {
	Path      string `json:"path"`
	Algorithm string `json:"algorithm"`
	Mode      string `json:"mode"`
	Digest    string `json:"digest"`
}

// runHash implements the default (no subcommand) behavior: hash each given
// path (after wildcard expansion) or stdin if no paths are given, printing
// one line per file. This never touches a database; it is the bare hashing
// primitive the rest of the command surface builds on.
func runHash(args []string, opts *hashOptions) error {
	if len(args) == 0 {
		return hashStdin(opts)
	}

	paths, err := wildcard.Expand(args)
	if err != nil {
		return failHerror(err)
	}

	mode := digestengine.Normal
	if opts.fast {
		mode = digestengine.Fast
	}

	var lines []hashLine
	for _, p := range paths {
		result, err := digestengine.ComputeFile(p, mode, []string{opts.algorithm}, sharedRegistry)
		if err != nil {
			return failHerror(err)
		}
		line := hashLine{
			Path: p, Algorithm: opts.algorithm, Mode: result.Mode.String(),
			Digest: result.Digests[opts.algorithm],
		}
		if opts.jsonOut {
			lines = append(lines, line)
			continue
		}
		fmt.Printf("%s  %s  %s  %s\n", line.Digest, line.Algorithm, line.Mode, line.Path)
	}

	if opts.jsonOut {
		return printJSON(lines)
	}
	return nil
}

func hashStdin(opts *hashOptions) error {
	if err := digestengine.ValidateMode(modeFor(opts.fast), false); err != nil {
		return failHerror(err)
	}
	result, err := digestengine.ComputeReader(os.Stdin, []string{opts.algorithm}, sharedRegistry)
	if err != nil {
		return failHerror(err)
	}
	line := hashLine{
		Path: "-", Algorithm: opts.algorithm, Mode: result.Mode.String(),
		Digest: result.Digests[opts.algorithm],
	}
	if opts.jsonOut {
		return printJSON(line)
	}
	fmt.Printf("%s  %s  %s  %s\n", line.Digest, line.Algorithm, line.Mode, line.Path)
	return nil
}

func modeFor(fast bool) digestengine.Mode {
	if fast {
		return digestengine.Fast
	}
	return digestengine.Normal
}
