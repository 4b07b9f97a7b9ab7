package herrors

import (
	"errors"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	e := New(IoOpen, "scan", "/tmp/f", errors.New("permission denied"))
	want := "scan: /tmp/f: permission denied"
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestParseLineFormatting(t *testing.T) {
	e := NewParseLine("database.read", "db.txt", 42, "garbage line", errors.New("bad field count"))
	want := `database.read: db.txt: line 42: "garbage line": bad field count`
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorIsComparesKind(t *testing.T) {
	a := New(PatternSyntax, "wildcard", "*.txt", errors.New("bad pattern"))
	b := New(PatternSyntax, "wildcard", "other.txt", errors.New("different message"))
	c := New(IoRead, "scan", "*.txt", errors.New("bad pattern"))

	if !errors.Is(a, b) {
		t.Error("errors with the same Kind should compare equal via errors.Is")
	}
	if errors.Is(a, c) {
		t.Error("errors with different Kinds should not compare equal")
	}
}

func TestLogAddAndEntries(t *testing.T) {
	log := NewLog(0)
	log.Add(New(IoRead, "scan", "a.txt", errors.New("boom")))
	log.Add(nil) // no-op
	log.Add(errors.New("plain error"))

	entries := log.Entries()
	if len(entries) != 2 {
		t.Fatalf("Entries() len = %d, want 2", len(entries))
	}
	if entries[1].Kind != IoRead {
		t.Errorf("plain error should be wrapped as IoRead, got %v", entries[1].Kind)
	}
}

func TestLogBoundedDropsOverflow(t *testing.T) {
	log := NewLog(2)
	for i := 0; i < 5; i++ {
		log.Add(New(IoRead, "scan", "a.txt", errors.New("boom")))
	}
	if len(log.Entries()) != 2 {
		t.Fatalf("Entries() len = %d, want 2 (capacity)", len(log.Entries()))
	}
	if log.Dropped() != 3 {
		t.Errorf("Dropped() = %d, want 3", log.Dropped())
	}
}

func TestDrainRecordsAndSinks(t *testing.T) {
	ch := make(chan error, 2)
	ch <- New(IoOpen, "scan", "a.txt", errors.New("fail"))
	ch <- errors.New("plain")
	close(ch)

	log := NewLog(0)
	var sunk int
	Drain(ch, log, func(error) { sunk++ })

	if len(log.Entries()) != 2 {
		t.Errorf("Entries() len = %d, want 2", len(log.Entries()))
	}
	if sunk != 2 {
		t.Errorf("sink called %d times, want 2", sunk)
	}
}
