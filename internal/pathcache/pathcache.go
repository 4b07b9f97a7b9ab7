// Package pathcache implements the path canonicalizer (spec component C4):
// a process-wide cache, keyed by the exact input path string, that resolves
// and normalizes filesystem paths and keeps one result per distinct input.
package pathcache

import (
	"path/filepath"
	"sync"
)

// entry is the cached outcome of canonicalizing one input path.
type entry struct {
	result string
	err    error
}

// Cache canonicalizes paths with memoization. Safe for concurrent use by
// multiple scan/verify workers. Resolution runs outside the lock, so
// concurrent first requests for one input may each resolve it, but only
// the first stored result is kept ("first-writer-wins") and every caller
// observes that one.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
}

// New returns an empty path cache.
func New() *Cache {
	return &Cache{entries: make(map[string]entry)}
}

// Canonicalize resolves path to an absolute, symlink-free form, memoizing
// the result under the exact input string.
func (c *Cache) Canonicalize(path string) (string, error) {
	c.mu.Lock()
	if e, ok := c.entries[path]; ok {
		c.mu.Unlock()
		return e.result, e.err
	}
	c.mu.Unlock()

	result, err := canonicalize(path)

	c.mu.Lock()
	// First writer wins: if another goroutine already stored a result for
	// this exact input while we were resolving, keep that one. The outcome
	// is identical either way since canonicalization is a pure function of
	// the input path and the filesystem state at call time, but this keeps
	// every caller observing one consistent value instead of whichever
	// finished last.
	if e, ok := c.entries[path]; ok {
		c.mu.Unlock()
		return e.result, e.err
	}
	c.entries[path] = entry{result: result, err: err}
	c.mu.Unlock()

	return result, err
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

// Len reports how many distinct paths have been cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
