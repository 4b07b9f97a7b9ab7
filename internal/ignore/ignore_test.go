package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNegationOverridesExclusion(t *testing.T) {
	m := New()
	for _, p := range []string{"*.log", "!keep.log"} {
		if err := m.AddPattern(p); err != nil {
			t.Fatalf("AddPattern(%q): %v", p, err)
		}
	}
	if m.ShouldIgnore("other.log", false) != true {
		t.Error("other.log should be ignored")
	}
	if m.ShouldIgnore("keep.log", false) != false {
		t.Error("keep.log should be kept (negated)")
	}
}

func TestDirOnlyPattern(t *testing.T) {
	m := New()
	if err := m.AddPattern("build/"); err != nil {
		t.Fatalf("AddPattern: %v", err)
	}
	if !m.ShouldIgnore("build", true) {
		t.Error("directory 'build' should be ignored")
	}
	if m.ShouldIgnore("build", false) {
		t.Error("a file literally named 'build' should not match a dir-only pattern")
	}
}

func TestDoubleStarCrossesSeparators(t *testing.T) {
	m := New()
	if err := m.AddPattern("**/generated/**"); err != nil {
		t.Fatalf("AddPattern: %v", err)
	}
	if !m.ShouldIgnore("a/b/generated/file.go", false) {
		t.Error("expected nested generated/ path to be ignored")
	}
}

func TestCharacterClass(t *testing.T) {
	m := New()
	if err := m.AddPattern("file[0-9].txt"); err != nil {
		t.Fatalf("AddPattern: %v", err)
	}
	if !m.ShouldIgnore("file5.txt", false) {
		t.Error("file5.txt should match [0-9] class")
	}
	if m.ShouldIgnore("filea.txt", false) {
		t.Error("filea.txt should not match [0-9] class")
	}
}

func TestCommentAndBlankLinesSkipped(t *testing.T) {
	m := New()
	content := "# a comment\n\n*.tmp\n"
	if err := m.LoadReader("<test>", strings.NewReader(content)); err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	if m.Len() != 1 {
		t.Errorf("expected exactly 1 pattern loaded, got %d", m.Len())
	}
}

func TestLoadForRootComposesAncestorChain(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, ".hashignore"), []byte("*.log\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, ".hashignore"), []byte("!keep.log\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m, err := LoadForRoot(sub)
	if err != nil {
		t.Fatalf("LoadForRoot: %v", err)
	}
	if !m.ShouldIgnore("other.log", false) {
		t.Error("other.log should still be ignored by the ancestor rule")
	}
	if m.ShouldIgnore("keep.log", false) {
		t.Error("keep.log should be un-ignored by the closer .hashignore")
	}
}

func TestInvalidPatternSyntax(t *testing.T) {
	m := New()
	err := m.AddPattern("[")
	if err == nil {
		t.Fatal("expected PatternSyntax error for malformed character class")
	}
}
