package backend

import (
	"context"
	"sync"
	"time"

	"github.com/hyp3rd/hyperstats/internal/sentinel"
	"github.com/hyp3rd/hyperstats/pkg/cache"
	"github.com/hyp3rd/hyperstats/pkg/stats"
)

// InMemory is a report cache that keeps reports in memory, leveraging the sharded `ConcurrentMap`.
// It is bounded by a report count and by the CBOR-encoded size of the stored reports.
// When either bound is hit it drops expired reports first, then the least recently accessed one.
type InMemory struct {
	mu sync.Mutex // serializes every removal and insert so size stays exact

	items        cache.ConcurrentMap // map to store the items in the cache
	capacity     int                 // capacity of the cache, zero means unbounded
	maxCacheSize int64               // byte budget, zero means unbounded
	size         int64               // bytes held, guarded by mu
}

// NewInMemory creates a new in-memory cache with the given options.
func NewInMemory(opts ...Option[InMemory]) (*InMemory, error) {
	backendInstance := &InMemory{
		items: cache.New(),
	}
	// Apply the backend options
	ApplyOptions(backendInstance, opts...)
	// Check if the `capacity` is valid
	if backendInstance.capacity < 0 {
		return nil, sentinel.ErrInvalidCapacity
	}

	if backendInstance.maxCacheSize < 0 {
		return nil, sentinel.ErrInvalidMaxCacheSize
	}

	return backendInstance, nil
}

// Capacity returns the capacity of the cacheBackend.
func (cacheBackend *InMemory) Capacity() int {
	return cacheBackend.capacity
}

// Count returns the number of items in the cache.
func (cacheBackend *InMemory) Count(_ context.Context) int {
	return cacheBackend.items.Count()
}

// Get retrieves the report stored under key. Expired items are dropped on sight.
func (cacheBackend *InMemory) Get(_ context.Context, key string) (*stats.Report, bool) {
	item, ok := cacheBackend.items.Get(key)
	if !ok {
		return nil, false
	}

	if item.Expired() {
		cacheBackend.mu.Lock()
		cacheBackend.drop(item)
		cacheBackend.mu.Unlock()

		return nil, false
	}

	item.Touch()

	return item.Report, true
}

// Set adds a report to the cache, evicting to make room when the capacity or the byte budget
// is reached. A report larger than the whole budget is rejected with sentinel.ErrCacheFull.
func (cacheBackend *InMemory) Set(_ context.Context, key string, report *stats.Report, ttl time.Duration) error {
	item := cache.NewItem(key, report, ttl)

	// Check for invalid key, value, or duration
	err := item.Valid()
	if err != nil {
		return err
	}

	err = item.SetSize()
	if err != nil {
		return err
	}

	if cacheBackend.maxCacheSize > 0 && item.Size > cacheBackend.maxCacheSize {
		return sentinel.ErrCacheFull
	}

	cacheBackend.mu.Lock()
	defer cacheBackend.mu.Unlock()

	// the previous report under key is replaced either way
	if old, ok := cacheBackend.items.Pop(key); ok {
		cacheBackend.size -= old.Size
	}

	for cacheBackend.full(item.Size) {
		if cacheBackend.evict() == 0 {
			return sentinel.ErrCacheFull
		}
	}

	cacheBackend.items.Set(key, item)
	cacheBackend.size += item.Size

	return nil
}

// full reports whether adding incoming bytes would break a bound. Callers hold mu.
func (cacheBackend *InMemory) full(incoming int64) bool {
	if cacheBackend.capacity > 0 && cacheBackend.items.Count() >= cacheBackend.capacity {
		return true
	}

	return cacheBackend.maxCacheSize > 0 && cacheBackend.size+incoming > cacheBackend.maxCacheSize
}

// evict drops every expired item; if none expired it drops the least recently accessed one,
// the least read one on a tie. It returns how many items it dropped. Callers hold mu.
func (cacheBackend *InMemory) evict() int {
	var (
		expired []*cache.Item
		lru     *cache.Item
	)

	cacheBackend.items.Range(func(_ string, item *cache.Item) bool {
		if item.Expired() {
			expired = append(expired, item)

			return true
		}

		if lru == nil || olderThan(item, lru) {
			lru = item
		}

		return true
	})

	if len(expired) == 0 && lru != nil {
		expired = append(expired, lru)
	}

	dropped := 0

	for _, item := range expired {
		if cacheBackend.drop(item) {
			dropped++
		}
	}

	return dropped
}

// drop removes item if key still maps to it. Callers hold mu.
func (cacheBackend *InMemory) drop(item *cache.Item) bool {
	if !cacheBackend.items.RemoveIf(item.Key, item) {
		return false
	}

	cacheBackend.size -= item.Size

	return true
}

func olderThan(a, b *cache.Item) bool {
	at, bt := a.LastAccess(), b.LastAccess()
	if at.Equal(bt) {
		return a.AccessCount() < b.AccessCount()
	}

	return at.Before(bt)
}

// Remove removes items with the given key from the cacheBackend. If an item is not found, it does nothing.
func (cacheBackend *InMemory) Remove(ctx context.Context, keys ...string) error {
	done := make(chan struct{})

	go func() {
		defer close(done)

		cacheBackend.mu.Lock()
		defer cacheBackend.mu.Unlock()

		for _, key := range keys {
			if item, ok := cacheBackend.items.Pop(key); ok {
				cacheBackend.size -= item.Size
			}
		}
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return sentinel.ErrTimeoutOrCanceled
	}
}

// Clear removes all items from the cacheBackend.
func (cacheBackend *InMemory) Clear(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		defer close(done)
		cacheBackend.mu.Lock()
		defer cacheBackend.mu.Unlock()

		cacheBackend.items.Clear()
		cacheBackend.size = 0
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return sentinel.ErrTimeoutOrCanceled
	}
}
