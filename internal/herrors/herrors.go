// Package herrors defines hashdog's closed set of error kinds and a bounded,
// concurrency-safe log for accumulating per-file failures without aborting
// a scan or verify run.
package herrors

import (
	"errors"
	"fmt"
	"sync"
)

// Kind is one of the error kinds from the error handling design.
type Kind int

const (
	UnknownAlgorithm Kind = iota
	UnsupportedMode        // fast mode requested on a stream/text input
	IoOpen
	IoRead
	IoWrite
	Truncated
	ParseLine // carries a line number and content snippet via Error.Line/Snippet
	FormatMismatch
	PatternSyntax
	NoMatches
	DatabaseMissing
)

func (k Kind) String() string {
	switch k {
	case UnknownAlgorithm:
		return "UnknownAlgorithm"
	case UnsupportedMode:
		return "UnsupportedMode"
	case IoOpen:
		return "IoOpen"
	case IoRead:
		return "IoRead"
	case IoWrite:
		return "IoWrite"
	case Truncated:
		return "Truncated"
	case ParseLine:
		return "ParseLine"
	case FormatMismatch:
		return "FormatMismatch"
	case PatternSyntax:
		return "PatternSyntax"
	case NoMatches:
		return "NoMatches"
	case DatabaseMissing:
		return "DatabaseMissing"
	default:
		return "Unknown"
	}
}

// Error carries a path and the operation name alongside its kind, per §7:
// "All errors carry a path and the operation name."
type Error struct {
	Kind    Kind
	Op      string // operation name, e.g. "scan", "verify", "database.read"
	Path    string
	Line    int    // non-zero for ParseLine
	Snippet string // non-empty for ParseLine
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%s: %s: line %d: %q: %v", e.Op, e.Path, e.Line, e.Snippet, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Path, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind, so
// errors.Is(err, herrors.New(kind, ...)) matches by kind regardless of op,
// path or message; callers typically use errors.As(&herrors.Error{}).
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// New constructs an *Error.
func New(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// NewParseLine constructs a ParseLine error with line number and snippet.
func NewParseLine(op, path string, line int, snippet string, err error) *Error {
	return &Error{Kind: ParseLine, Op: op, Path: path, Line: line, Snippet: snippet, Err: err}
}

// Log is a bounded, mutex-protected queue of captured errors. It caps memory
// under pathological failures (§5: "bounded mutex-protected queue (caps
// memory under pathological failures)").
type Log struct {
	mu       sync.Mutex
	cap      int
	entries  []*Error
	dropped  int
}

// defaultCap matches the bound implied by §5's "bounded" log when no
// explicit capacity is requested.
const defaultCap = 1000

// NewLog creates an error log with the given capacity (<=0 uses the default).
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = defaultCap
	}
	return &Log{cap: capacity}
}

// Add appends an error, converting plain errors to a generic IoRead kind if
// they aren't already *Error.
func (l *Log) Add(err error) {
	if err == nil {
		return
	}
	var he *Error
	if !errors.As(err, &he) {
		he = New(IoRead, "unknown", "", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) >= l.cap {
		l.dropped++
		return
	}
	l.entries = append(l.entries, he)
}

// Entries returns a snapshot copy of the captured errors.
func (l *Log) Entries() []*Error {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Error, len(l.entries))
	copy(out, l.entries)
	return out
}

// Dropped reports how many errors were discarded once the log filled up.
func (l *Log) Dropped() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// Drain reads from errCh until it is closed, printing or recording each
// error via sink. This mirrors the teacher's drainErrors goroutine but
// additionally records into a Log for --json error arrays.
func Drain(errCh <-chan error, log *Log, sink func(error)) {
	for err := range errCh {
		if log != nil {
			log.Add(err)
		}
		if sink != nil {
			sink(err)
		}
	}
}
