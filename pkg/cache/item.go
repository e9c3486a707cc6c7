package cache

import (
	"bytes"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ugorji/go/codec"

	"github.com/hyp3rd/hyperstats/internal/sentinel"
	"github.com/hyp3rd/hyperstats/pkg/stats"
)

// Pools and codec handle shared by SetSize.
//
//nolint:gochecknoglobals
var cborHandle = &codec.CborHandle{}

//nolint:gochecknoglobals
var bufPool = sync.Pool{ // *bytes.Buffer
	New: func() any { return new(bytes.Buffer) },
}

// Item is a cached report. Access bookkeeping is atomic so readers holding only a shard
// read lock may touch it.
type Item struct {
	Key        string        // fingerprint of the sample set and variant
	Report     *stats.Report // unrounded report
	CreatedAt  time.Time     // insertion time, the TTL origin
	Expiration time.Duration // time to live, zero means no expiry
	Size       int64         // CBOR-encoded size in bytes, counted against the byte budget

	lastAccess  atomic.Int64 // unix nanos
	accessCount atomic.Uint32
}

// NewItem builds an item stamped with the current time.
func NewItem(key string, report *stats.Report, expiration time.Duration) *Item {
	now := time.Now()

	it := &Item{Key: key, Report: report, CreatedAt: now, Expiration: expiration}
	it.lastAccess.Store(now.UnixNano())

	return it
}

// Touch updates last access time and increments access count.
func (it *Item) Touch() {
	it.lastAccess.Store(time.Now().UnixNano())
	it.accessCount.Add(1)
}

// LastAccess returns the time of the last Touch (or creation).
func (it *Item) LastAccess() time.Time {
	return time.Unix(0, it.lastAccess.Load())
}

// AccessCount returns how many times the item has been read.
func (it *Item) AccessCount() uint32 {
	return it.accessCount.Load()
}

// Valid returns an error if the item is invalid, nil otherwise.
func (it *Item) Valid() error {
	if strings.TrimSpace(it.Key) == "" {
		return sentinel.ErrInvalidKey
	}

	if it.Report == nil {
		return sentinel.ErrNilValue
	}

	if it.Expiration < 0 {
		it.Expiration = 0

		return sentinel.ErrInvalidExpiration
	}

	return nil
}

// Expired reports whether the item outlived its TTL.
func (it *Item) Expired() bool {
	return it.Expiration > 0 && time.Since(it.CreatedAt) > it.Expiration
}

// SetSize computes and sets Size as the CBOR-encoded size of the report.
func (it *Item) SetSize() error {
	buf, ok := bufPool.Get().(*bytes.Buffer)
	if !ok {
		buf = new(bytes.Buffer)
	}

	buf.Reset()

	// Avoid retaining huge buffers in the pool
	const maxKeepCap = 1 << 20 // 1 MiB

	defer func() {
		if buf.Cap() <= maxKeepCap {
			bufPool.Put(buf)
		}
	}()

	err := codec.NewEncoder(buf, cborHandle).Encode(it.Report)
	if err != nil {
		return sentinel.ErrInvalidSize
	}

	it.Size = int64(buf.Len())

	return nil
}
