// Package wildcard implements the wildcard expander (spec component C5):
// expanding shell-style `*`, `?`, `[...]` patterns to concrete paths and
// aggregating results from several patterns in sorted order.
package wildcard

import (
	"path/filepath"
	"slices"

	"github.com/ivoronin/hashdog/internal/herrors"
)

// Expand resolves one or more patterns (plain paths pass through
// filepath.Glob unchanged, since a literal path is its own one-element
// match set) into a single sorted, de-duplicated list of concrete paths.
// An empty result is a fatal NoMatches error, per spec §7.
func Expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	for _, pat := range patterns {
		matches, err := filepath.Glob(pat)
		if err != nil {
			return nil, herrors.New(herrors.PatternSyntax, "wildcard", pat, err)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}

	if len(out) == 0 {
		return nil, herrors.New(herrors.NoMatches, "wildcard", "", errNoMatches(patterns))
	}

	slices.Sort(out)
	return out, nil
}

type errNoMatches []string

func (e errNoMatches) Error() string {
	if len(e) == 1 {
		return "pattern " + e[0] + " matched no files"
	}
	return "no patterns matched any files"
}
