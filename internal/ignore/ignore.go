// Package ignore implements the gitignore-style ignore matcher (spec
// component C3): composing `.hashignore` files along the ancestor chain from
// the filesystem root down to the scan root into a single matcher.
package ignore

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/ivoronin/hashdog/internal/herrors"
)

const fileName = ".hashignore"

// pattern is a single compiled ignore rule.
type pattern struct {
	raw        string
	glob       glob.Glob
	negate     bool
	dirOnly    bool
	hasSlash   bool
	isAbsolute bool
}

// Matcher evaluates a path against a composed set of ignore patterns.
// Patterns are evaluated in load order; the last matching pattern wins,
// which is how negation (`!pattern`) overrides an earlier exclusion.
type Matcher struct {
	patterns []pattern
}

// New returns an empty matcher that excludes nothing.
func New() *Matcher {
	return &Matcher{}
}

// LoadForRoot composes a matcher from every .hashignore file found from the
// filesystem root down to root, inclusive. Ancestor files are loaded first
// so that a .hashignore closer to the scan root can override broader
// ancestor rules, matching git's nested-gitignore precedence.
func LoadForRoot(root string) (*Matcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, herrors.New(herrors.IoRead, "ignore", root, err)
	}

	var chain []string
	dir := abs
	for {
		chain = append(chain, dir)
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	m := New()
	for i := len(chain) - 1; i >= 0; i-- {
		if err := m.LoadFile(filepath.Join(chain[i], fileName)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// LoadFile loads patterns from a .hashignore file. A missing file is not an
// error; a malformed pattern is (PatternSyntax, fatal at configuration time
// per spec §7).
func (m *Matcher) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return herrors.New(herrors.IoOpen, "ignore", path, err)
	}
	defer func() { _ = f.Close() }()

	return m.LoadReader(path, f)
}

// LoadReader loads patterns from an arbitrary reader, path is used only for
// error messages.
func (m *Matcher) LoadReader(path string, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := m.AddPattern(line); err != nil {
			return &herrors.Error{Kind: herrors.PatternSyntax, Op: "ignore", Path: path, Line: lineNum, Snippet: line, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return herrors.New(herrors.IoRead, "ignore", path, err)
	}
	return nil
}

// AddPattern compiles and appends a single gitignore-style pattern.
func (m *Matcher) AddPattern(raw string) error {
	if raw == "" {
		return nil
	}
	p := raw

	negate := strings.HasPrefix(p, "!")
	if negate {
		p = p[1:]
	}

	dirOnly := strings.HasSuffix(p, "/")
	if dirOnly {
		p = strings.TrimSuffix(p, "/")
	}

	hasSlash := strings.Contains(p, "/")
	isAbsolute := strings.HasPrefix(p, "/")
	if isAbsolute {
		p = p[1:]
		hasSlash = true
	}

	g, err := compile(p, hasSlash)
	if err != nil {
		return herrors.New(herrors.PatternSyntax, "ignore", raw, err)
	}

	m.patterns = append(m.patterns, pattern{
		raw:        raw,
		glob:       g,
		negate:     negate,
		dirOnly:    dirOnly,
		hasSlash:   hasSlash,
		isAbsolute: isAbsolute,
	})
	return nil
}

// compile turns a gitignore-syntax fragment into a gobwas/glob pattern.
// `**` already matches across separators in gobwas/glob's default syntax;
// a pattern without a slash is anchored to match at any directory depth by
// prefixing it with "**/".
func compile(p string, hasSlash bool) (glob.Glob, error) {
	g := p
	if !hasSlash {
		g = "**/" + p
	}
	return glob.Compile(g, '/')
}

// ShouldIgnore reports whether path (relative to the composed root, forward
// slashes) is excluded. isDir tells directory-only patterns whether to
// apply.
func (m *Matcher) ShouldIgnore(path string, isDir bool) bool {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")

	ignored := false
	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		if matches(p, path, isDir) {
			ignored = !p.negate
		}
	}
	return ignored
}

func matches(p pattern, path string, isDir bool) bool {
	if !p.hasSlash {
		// compile prefixed the pattern with "**/", which needs a separator
		// before the matched component; a leading "/" lets root-level
		// entries match too.
		if p.glob.Match("/" + path) {
			return true
		}
	}
	testPath := path
	if isDir && !strings.HasSuffix(testPath, "/") {
		testPath += "/"
	}
	return p.glob.Match(testPath)
}

// Len reports how many patterns are loaded, for diagnostics.
func (m *Matcher) Len() int { return len(m.patterns) }
