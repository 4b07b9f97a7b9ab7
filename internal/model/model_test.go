package model

import "testing"

func TestNewSortedOrdersByKey(t *testing.T) {
	type item struct {
		name string
		size int
	}
	items := []item{{"c", 3}, {"a", 1}, {"b", 2}}

	sorted := NewSorted(items, func(i item) int { return i.size })

	if sorted.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", sorted.Len())
	}
	got := sorted.Items()
	want := []string{"a", "b", "c"}
	for i, w := range want {
		if got[i].name != w {
			t.Errorf("Items()[%d].name = %q, want %q", i, got[i].name, w)
		}
	}
	if sorted.First().name != "a" {
		t.Errorf("First().name = %q, want %q", sorted.First().name, "a")
	}
}

func TestNewSortedDoesNotMutateInput(t *testing.T) {
	items := []int{3, 1, 2}
	_ = NewSorted(items, func(i int) int { return i })
	if items[0] != 3 || items[1] != 1 || items[2] != 2 {
		t.Errorf("NewSorted mutated its input slice: %v", items)
	}
}

func TestSortedFirstOnEmpty(t *testing.T) {
	sorted := NewSorted[int, int](nil, func(i int) int { return i })
	if sorted.First() != 0 {
		t.Errorf("First() on empty = %d, want zero value", sorted.First())
	}
}

func TestSemaphoreLimitsConcurrency(t *testing.T) {
	sem := NewSemaphore(2)
	sem.Acquire()
	sem.Acquire()

	done := make(chan struct{})
	go func() {
		sem.Acquire()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Acquire() should have blocked with the semaphore full")
	default:
	}

	sem.Release()
	<-done
}

func TestSemaphoreNewWithZeroAllowsOne(t *testing.T) {
	sem := NewSemaphore(0)
	sem.Acquire()
	sem.Release()
}

func TestCancelTokenCancelledAfterCancel(t *testing.T) {
	tok := NewCancelToken()
	if tok.Cancelled() {
		t.Fatal("fresh token should not be cancelled")
	}
	tok.Cancel()
	if !tok.Cancelled() {
		t.Fatal("token should be cancelled after Cancel()")
	}
	tok.Cancel() // safe to call twice
}
