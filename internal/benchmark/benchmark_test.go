package benchmark

import (
	"testing"

	"github.com/ivoronin/hashdog/internal/algo"
)

func TestRunProducesOneResultPerAlgorithm(t *testing.T) {
	reg := algo.New()
	results, err := Run(reg, []string{"sha256", "blake3", "xxh3"}, 1<<20)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, name := range []string{"sha256", "blake3", "xxh3"} {
		if results[i].Algorithm != name {
			t.Errorf("results[%d].Algorithm = %s, want %s", i, results[i].Algorithm, name)
		}
		if results[i].MBPerSec <= 0 {
			t.Errorf("results[%d].MBPerSec = %v, want > 0", i, results[i].MBPerSec)
		}
	}
}

func TestRunDefaultsSizeWhenZero(t *testing.T) {
	reg := algo.New()
	results, err := Run(reg, []string{"md5"}, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if results[0].Size != defaultSize {
		t.Errorf("Size = %d, want %d", results[0].Size, defaultSize)
	}
}

func TestRunUnknownAlgorithm(t *testing.T) {
	reg := algo.New()
	if _, err := Run(reg, []string{"does-not-exist"}, 1024); err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
}
