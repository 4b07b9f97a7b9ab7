package compare

import (
	"path/filepath"
	"testing"

	"github.com/ivoronin/hashdog/internal/database"
)

func TestCompareRecordsThreeWay(t *testing.T) {
	old := []database.Record{
		{Path: "same.txt", HexDigest: "aaa", Algorithm: "sha256"},
		{Path: "changed.txt", HexDigest: "bbb", Algorithm: "sha256"},
		{Path: "removed.txt", HexDigest: "ccc", Algorithm: "sha256"},
	}
	neu := []database.Record{
		{Path: "same.txt", HexDigest: "aaa", Algorithm: "sha256"},
		{Path: "changed.txt", HexDigest: "bbb2", Algorithm: "sha256"},
		{Path: "added.txt", HexDigest: "ddd", Algorithm: "sha256"},
	}

	diff := CompareRecords(old, neu)

	if len(diff.Unchanged) != 1 || diff.Unchanged[0] != "same.txt" {
		t.Errorf("Unchanged = %v", diff.Unchanged)
	}
	if len(diff.Changed) != 1 || diff.Changed[0].Path != "changed.txt" {
		t.Errorf("Changed = %v", diff.Changed)
	}
	if len(diff.Removed) != 1 || diff.Removed[0] != "removed.txt" {
		t.Errorf("Removed = %v", diff.Removed)
	}
	if len(diff.Added) != 1 || diff.Added[0] != "added.txt" {
		t.Errorf("Added = %v", diff.Added)
	}
}

func TestFindDuplicates(t *testing.T) {
	records := []database.Record{
		{Path: "a.txt", HexDigest: "aaa", Algorithm: "sha256"},
		{Path: "b.txt", HexDigest: "aaa", Algorithm: "sha256"},
		{Path: "c.txt", HexDigest: "ccc", Algorithm: "sha256"},
	}
	dups := FindDuplicates(records)
	if len(dups) != 1 {
		t.Fatalf("expected 1 duplicate set, got %d", len(dups))
	}
	if len(dups[0].Paths) != 2 {
		t.Errorf("expected 2 paths in duplicate set, got %v", dups[0].Paths)
	}
}

func TestCompareLoadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.txt")
	newPath := filepath.Join(dir, "new.txt")

	if err := database.WriteAll(oldPath, database.LineFormat, []database.Record{
		{Path: "f.txt", HexDigest: "aaa", Algorithm: "sha256", Mode: "normal"},
	}); err != nil {
		t.Fatalf("WriteAll old: %v", err)
	}
	if err := database.WriteAll(newPath, database.LineFormat, []database.Record{
		{Path: "f.txt", HexDigest: "bbb", Algorithm: "sha256", Mode: "normal"},
	}); err != nil {
		t.Fatalf("WriteAll new: %v", err)
	}

	diff, err := Compare(oldPath, database.LineFormat, newPath, database.LineFormat)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(diff.Changed) != 1 {
		t.Errorf("expected 1 changed record, got %v", diff.Changed)
	}
}
