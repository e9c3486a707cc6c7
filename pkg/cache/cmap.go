// Package cache provides the sharded concurrent map that backs the in-memory report cache.
// The map is divided into ShardCount independent shards, each protected by its own
// read-write mutex, so concurrent requests for different sample sets rarely contend.
package cache

import (
	"sync"
)

const (
	// ShardCount is the number of shards used by the map.
	ShardCount = 32
	// ShardCount32 is the number of shards used by the map pre-casted to uint32 to avoid performance issues.
	ShardCount32 uint32 = uint32(ShardCount)
)

// ConcurrentMap is a "thread" safe map of type string:*Item.
type ConcurrentMap struct {
	shards []*ConcurrentMapShard
}

// ConcurrentMapShard is a "thread" safe string to `*Item` map shard.
type ConcurrentMapShard struct {
	sync.RWMutex

	items map[string]*Item
}

// New creates a new concurrent map.
func New() ConcurrentMap {
	shards := make([]*ConcurrentMapShard, ShardCount)
	for i := range ShardCount {
		shards[i] = &ConcurrentMapShard{
			items: make(map[string]*Item),
		}
	}

	return ConcurrentMap{shards: shards}
}

// GetShard returns shard under given key.
func (cm *ConcurrentMap) GetShard(key string) *ConcurrentMapShard {
	return cm.shards[getShardIndex(key)]
}

// getShardIndex hashes key with inline FNV-1a to avoid allocations.
func getShardIndex(key string) uint32 {
	const (
		fnvOffset32 = 2166136261
		fnvPrime32  = 16777619
	)

	var sum uint32 = fnvOffset32
	for i := range key {
		sum ^= uint32(key[i])

		sum *= fnvPrime32
	}

	return sum & (ShardCount32 - 1)
}

// Set sets the given value under the specified key.
func (cm *ConcurrentMap) Set(key string, value *Item) {
	shard := cm.GetShard(key)
	shard.Lock()

	shard.items[key] = value
	shard.Unlock()
}

// Get retrieves an element from map under given key.
func (cm *ConcurrentMap) Get(key string) (*Item, bool) {
	shard := cm.GetShard(key)
	shard.RLock()

	item, ok := shard.items[key]
	shard.RUnlock()

	return item, ok
}

// Has checks if key is present in the map.
func (cm *ConcurrentMap) Has(key string) bool {
	_, ok := cm.Get(key)

	return ok
}

// Pop removes an element from the map and returns it.
func (cm *ConcurrentMap) Pop(key string) (*Item, bool) {
	shard := cm.GetShard(key)
	shard.Lock()

	item, ok := shard.items[key]
	if ok {
		delete(shard.items, key)
	}

	shard.Unlock()

	return item, ok
}

// RemoveIf removes the value under key only if it is still the given item.
func (cm *ConcurrentMap) RemoveIf(key string, item *Item) bool {
	shard := cm.GetShard(key)
	shard.Lock()
	defer shard.Unlock()

	if current, ok := shard.items[key]; ok && current == item {
		delete(shard.items, key)

		return true
	}

	return false
}

// Range calls fn for every item, one shard at a time under its read lock, until fn returns false.
// fn must not call back into the map.
func (cm *ConcurrentMap) Range(fn func(key string, item *Item) bool) {
	for _, shard := range cm.shards {
		shard.RLock()

		for key, item := range shard.items {
			if !fn(key, item) {
				shard.RUnlock()

				return
			}
		}

		shard.RUnlock()
	}
}

// Clear removes all items from map.
func (cm *ConcurrentMap) Clear() {
	for _, shard := range cm.shards {
		shard.Lock()

		shard.items = make(map[string]*Item)
		shard.Unlock()
	}
}

// Count returns the number of items in the map.
func (cm *ConcurrentMap) Count() int {
	count := 0

	for _, shard := range cm.shards {
		shard.RLock()

		count += len(shard.items)
		shard.RUnlock()
	}

	return count
}
