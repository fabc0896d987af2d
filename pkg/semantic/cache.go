package semantic

import (
	"context"
	"sync"
)

// Cache stores computed embeddings keyed by input text. GetOrCompute must
// guarantee at most one in-flight computation per distinct text: embedding
// is the expensive operation of the whole system, so concurrent requests
// for the same text have to converge on one call.
type Cache interface {
	GetOrCompute(ctx context.Context, text string, compute func(context.Context) ([]float32, error)) ([]float32, error)
}

// MemoryCache is an in-process Cache, safe for concurrent use. It is owned
// by the caller and injected into the scorer; there is no hidden
// process-wide instance.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	ready chan struct{}
	vec   []float32
	err   error
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]*cacheEntry{}}
}

// GetOrCompute returns the cached vector for text, computing and storing it
// on first request. Concurrent callers for the same text wait on the first
// caller's result. A failed computation is not cached, so later calls retry.
func (c *MemoryCache) GetOrCompute(ctx context.Context, text string, compute func(context.Context) ([]float32, error)) ([]float32, error) {
	c.mu.Lock()
	if e, ok := c.entries[text]; ok {
		c.mu.Unlock()
		select {
		case <-e.ready:
			return e.vec, e.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	e := &cacheEntry{ready: make(chan struct{})}
	c.entries[text] = e
	c.mu.Unlock()

	vec, err := compute(ctx)
	if err != nil {
		e.err = err
		c.mu.Lock()
		delete(c.entries, text)
		c.mu.Unlock()
		close(e.ready)
		return nil, err
	}

	e.vec = vec
	close(e.ready)
	return vec, nil
}

// Len returns the number of stored vectors.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		select {
		case <-e.ready:
			if e.err == nil {
				n++
			}
		default:
		}
	}
	return n
}
