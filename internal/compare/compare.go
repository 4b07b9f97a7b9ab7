// Package compare implements the compare engine (spec component C9): a
// two-database diff (unchanged / changed / removed / added) plus
// within-database duplicate detection by grouping records on digest.
package compare

import (
	"sort"

	"github.com/ivoronin/hashdog/internal/database"
)

// Changed pairs a path present in both databases with its two digests.
type Changed struct {
	Path string
	Old  string
	New  string
}

// Diff is the deterministic (sorted) three-way outcome of comparing two
// databases' path/digest key sets.
type Diff struct {
	Unchanged []string
	Changed   []Changed
	Removed   []string // present in the old database, absent from the new
	Added     []string // present in the new database, absent from the old
}

// Compare loads both databases and diffs their path sets, comparing digests
// for paths present in both. Complexity is O(n log n), dominated by the
// final sort.
func Compare(oldPath string, oldFormat database.Format, newPath string, newFormat database.Format) (Diff, error) {
	oldRecords, _, err := database.Load(oldPath, oldFormat)
	if err != nil {
		return Diff{}, err
	}
	newRecords, _, err := database.Load(newPath, newFormat)
	if err != nil {
		return Diff{}, err
	}
	return CompareRecords(oldRecords, newRecords), nil
}

// CompareRecords diffs two already-loaded record sets, keyed by path.
func CompareRecords(oldRecords, newRecords []database.Record) Diff {
	oldByPath := indexByPath(oldRecords)
	newByPath := indexByPath(newRecords)

	var diff Diff
	for path, oldRec := range oldByPath {
		newRec, ok := newByPath[path]
		if !ok {
			diff.Removed = append(diff.Removed, path)
			continue
		}
		if oldRec.HexDigest == newRec.HexDigest {
			diff.Unchanged = append(diff.Unchanged, path)
		} else {
			diff.Changed = append(diff.Changed, Changed{Path: path, Old: oldRec.HexDigest, New: newRec.HexDigest})
		}
	}
	for path := range newByPath {
		if _, ok := oldByPath[path]; !ok {
			diff.Added = append(diff.Added, path)
		}
	}

	sort.Strings(diff.Unchanged)
	sort.Strings(diff.Removed)
	sort.Strings(diff.Added)
	sort.Slice(diff.Changed, func(i, j int) bool { return diff.Changed[i].Path < diff.Changed[j].Path })
	return diff
}

func indexByPath(records []database.Record) map[string]database.Record {
	m := make(map[string]database.Record, len(records))
	for _, r := range records {
		m[r.Path] = r
	}
	return m
}

// DuplicateSet groups paths within one database that share a digest under
// the same algorithm.
type DuplicateSet struct {
	Algorithm string
	Digest    string
	Paths     []string
}

type digestKey struct {
	algorithm string
	digest    string
}

// FindDuplicates groups records by (algorithm, digest), keeping only groups
// with two or more distinct paths.
func FindDuplicates(records []database.Record) []DuplicateSet {
	grouped := make(map[digestKey][]string)
	for _, r := range records {
		key := digestKey{algorithm: r.Algorithm, digest: r.HexDigest}
		grouped[key] = append(grouped[key], r.Path)
	}

	var out []DuplicateSet
	for key, paths := range grouped {
		if len(paths) < 2 {
			continue
		}
		sort.Strings(paths)
		out = append(out, DuplicateSet{Algorithm: key.algorithm, Digest: key.digest, Paths: paths})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Digest != out[j].Digest {
			return out[i].Digest < out[j].Digest
		}
		return out[i].Algorithm < out[j].Algorithm
	})
	return out
}
