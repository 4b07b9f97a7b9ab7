package database

import (
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

func sortRecords(rs []Record) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].Path < rs[j].Path })
}

func TestLineFormatRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.txt")
	want := []Record{
		{Path: "a.txt", HexDigest: "abc123", Algorithm: "sha256", Mode: "normal"},
		{Path: "dir/b with spaces.txt", HexDigest: "def456", Algorithm: "blake3", Mode: "fast"},
	}
	if err := WriteAll(path, LineFormat, want); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	got, skipped, err := Load(path, LineFormat)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if skipped != 0 {
		t.Errorf("expected 0 skipped lines, got %d", skipped)
	}
	sortRecords(got)
	sortRecords(want)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestLineFormatPathWithDoubleSpaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.txt")
	want := []Record{
		{Path: "weird  path  with  spaces.txt", HexDigest: "abc", Algorithm: "md5", Mode: "normal"},
	}
	if err := WriteAll(path, LineFormat, want); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	got, _, err := Load(path, LineFormat)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0].Path != want[0].Path {
		t.Errorf("path with embedded double spaces mangled: got %+v", got)
	}
}

func TestLineFormatSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.txt")
	content := "not a valid line\nabc123  sha256  normal  ok.txt\n\n"
	if err := writeRaw(path, content); err != nil {
		t.Fatalf("writeRaw: %v", err)
	}
	records, skipped, err := Load(path, LineFormat)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 valid record, got %d", len(records))
	}
	if skipped != 1 {
		t.Errorf("expected 1 skipped malformed line, got %d", skipped)
	}
}

func TestHashdeepRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.hashdeep")
	want := []Record{
		{Path: "a.txt", HexDigest: "abc123", Algorithm: "sha256", Size: 11, HasSize: true},
		{Path: "b.txt", HexDigest: "def456", Algorithm: "sha256", Size: 22, HasSize: true},
	}
	if err := WriteAll(path, HashdeepFormat, want); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	got, skipped, err := Load(path, HashdeepFormat)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if skipped != 0 {
		t.Errorf("expected 0 skipped, got %d", skipped)
	}
	sortRecords(got)
	sortRecords(want)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("hashdeep round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestHashdeepToleratesMissingInvocationComment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.hashdeep")
	content := "%%%% HASHDEEP-1.0\n%%%% size,md5,filename\n11,abc123,a.txt\n"
	if err := writeRaw(path, content); err != nil {
		t.Fatalf("writeRaw: %v", err)
	}
	records, _, err := Load(path, HashdeepFormat)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 1 || records[0].Path != "a.txt" {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestHashdeepToleratesMissingHeaderEntirely(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.hashdeep")
	content := "11,abc123,a.txt\n"
	if err := writeRaw(path, content); err != nil {
		t.Fatalf("writeRaw: %v", err)
	}
	records, _, err := Load(path, HashdeepFormat)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record parsed without header, got %d", len(records))
	}
}

func TestHashdeepMultiAlgorithmHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.hashdeep")
	content := "%%%% HASHDEEP-1.0\n%%%% size,md5,sha256,filename\n11,aaa,bbb,a.txt\n"
	if err := writeRaw(path, content); err != nil {
		t.Fatalf("writeRaw: %v", err)
	}
	records, skipped, err := Load(path, HashdeepFormat)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if skipped != 0 {
		t.Errorf("expected 0 skipped, got %d", skipped)
	}
	if len(records) != 2 {
		t.Fatalf("expected one record per declared algorithm column, got %d", len(records))
	}
	byAlgo := map[string]Record{}
	for _, r := range records {
		byAlgo[r.Algorithm] = r
	}
	if byAlgo["md5"].HexDigest != "aaa" || byAlgo["sha256"].HexDigest != "bbb" {
		t.Errorf("multi-algorithm row not split correctly: %+v", records)
	}
}

func TestCompressedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.txt.xz")
	want := []Record{
		{Path: "a.txt", HexDigest: "abc123", Algorithm: "sha256", Mode: "normal"},
	}
	if err := WriteAll(path, LineFormat, want); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	got, _, err := Load(path, LineFormat)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("compressed round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.txt")
	_, _, err := Load(path, LineFormat)
	if err == nil {
		t.Fatal("expected DatabaseMissing error")
	}
}

func writeRaw(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
