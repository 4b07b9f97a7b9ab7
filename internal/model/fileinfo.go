package model

import "time"

// FileInfo holds metadata for a scanned file, captured once at enumeration
// time so later pipeline stages never re-stat unless they must (dedup's
// apply mode does, to detect changes since scan).
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
	Dev     uint64
	Ino     uint64
	Nlink   uint32
}

// SiblingGroup contains files sharing the same inode (hardlinks).
// Files are always sorted by Path for deterministic iteration.
type SiblingGroup = Sorted[*FileInfo, string]

// NewSiblingGroup creates a SiblingGroup sorted by file path.
func NewSiblingGroup(files []*FileInfo) SiblingGroup {
	return NewSorted(files, func(f *FileInfo) string { return f.Path })
}

// DuplicateGroup contains sibling groups with identical content (confirmed,
// not just same-size candidates).
type DuplicateGroup = Sorted[SiblingGroup, string]

// NewDuplicateGroup creates a DuplicateGroup sorted by first file's path.
func NewDuplicateGroup(siblings []SiblingGroup) DuplicateGroup {
	return NewSorted(siblings, func(sg SiblingGroup) string { return sg.First().Path })
}

// DuplicateGroups is a sorted collection of duplicate groups.
type DuplicateGroups = Sorted[DuplicateGroup, string]

// NewDuplicateGroups creates sorted DuplicateGroups.
func NewDuplicateGroups(groups []DuplicateGroup) DuplicateGroups {
	return NewSorted(groups, func(dg DuplicateGroup) string {
		return dg.First().First().Path
	})
}
