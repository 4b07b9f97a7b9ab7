// Package model provides shared value types used across hashdog's pipeline
// stages: a generic sorted collection and the concurrency primitives the
// scan/verify pipelines build on.
package model

import (
	"cmp"
	"slices"
)

// Sorted is an ordered collection that maintains sort order by a key function.
// T is the element type, K is the comparable key type.
// Once constructed, items are guaranteed to be sorted by key.
type Sorted[T any, K cmp.Ordered] struct {
	items   []T
	keyFunc func(T) K
}

// NewSorted creates a sorted collection from items using keyFunc for ordering.
// Items are copied and sorted at construction time.
func NewSorted[T any, K cmp.Ordered](items []T, keyFunc func(T) K) Sorted[T, K] {
	sorted := make([]T, len(items))
	copy(sorted, items)
	slices.SortFunc(sorted, func(a, b T) int {
		return cmp.Compare(keyFunc(a), keyFunc(b))
	})
	return Sorted[T, K]{items: sorted, keyFunc: keyFunc}
}

// Items returns the sorted items.
func (s Sorted[T, K]) Items() []T { return s.items }

// First returns the first item (smallest key), or zero value if empty.
func (s Sorted[T, K]) First() T {
	if len(s.items) == 0 {
		var zero T
		return zero
	}
	return s.items[0]
}

// Len returns the number of items.
func (s Sorted[T, K]) Len() int { return len(s.items) }

// Semaphore implements a counting semaphore using a buffered channel.
// It limits concurrent access to a resource by blocking when the limit is reached.
type Semaphore chan struct{}

// NewSemaphore creates a semaphore that allows up to n concurrent acquisitions.
func NewSemaphore(n int) Semaphore {
	if n < 1 {
		n = 1
	}
	return make(chan struct{}, n)
}

// Acquire blocks until a slot is available, then claims it.
func (s Semaphore) Acquire() { s <- struct{}{} }

// Release frees a slot, unblocking one waiting Acquire call.
func (s Semaphore) Release() { <-s }

// CancelToken is a cooperative, checked-between-units cancellation signal.
// Scan workers poll Cancelled() before each file; a file hash already in
// progress is not checked between read chunks and runs to completion.
type CancelToken struct {
	ch chan struct{}
}

// NewCancelToken creates an armed cancellation token.
func NewCancelToken() *CancelToken {
	return &CancelToken{ch: make(chan struct{})}
}

// Cancel signals cancellation. Safe to call multiple times.
func (c *CancelToken) Cancel() {
	select {
	case <-c.ch:
	default:
		close(c.ch)
	}
}

// Cancelled reports whether Cancel has been called.
func (c *CancelToken) Cancelled() bool {
	select {
	case <-c.ch:
		return true
	default:
		return false
	}
}
