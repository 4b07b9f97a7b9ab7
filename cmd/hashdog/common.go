package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ivoronin/hashdog/internal/algo"
	"github.com/ivoronin/hashdog/internal/herrors"
	"github.com/ivoronin/hashdog/internal/progress"
)

// Exit codes, per spec §6: 0 success, 1 logical mismatch (verify mismatches/
// missing, compare differences), 2 usage error, 3 I/O or format error.
const (
	exitSuccess = 0
	exitLogical = 1
	exitUsage   = 2
	exitIOError = 3
)

// exitError carries a specific exit code out of a RunE. Cobra's own error
// printing is silenced in newRootCmd; fail prints the message instead.
type exitError int

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

// fail prints err to stderr and returns an exitError carrying code, which
// main() turns into the process exit status.
func fail(code int, err error) error {
	if err == nil {
		err = exitError(code)
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	return exitError(code)
}

// failHerror maps an *herrors.Error to exitIOError for I/O/format kinds, or
// exitUsage for configuration-time kinds (pattern syntax, unknown algorithm).
func failHerror(err error) error {
	var he *herrors.Error
	if errors.As(err, &he) {
		switch he.Kind {
		case herrors.PatternSyntax, herrors.UnknownAlgorithm, herrors.NoMatches, herrors.UnsupportedMode:
			return fail(exitUsage, err)
		default:
			return fail(exitIOError, err)
		}
	}
	return fail(exitIOError, err)
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// sinkFor returns the progress sink appropriate for the requested output
// mode: JSON and explicitly-disabled progress both get the no-op sink, since
// a progress bar would corrupt either the machine-readable stream or a
// quiet run.
func sinkFor(jsonOutput, noProgress bool) progress.Sink {
	if jsonOutput || noProgress {
		return progress.NullSink{}
	}
	return progress.NewBar()
}

// sharedRegistry is the process-wide algorithm registry; immutable after
// construction, safe to share across every subcommand invocation.
var sharedRegistry = algo.New()
