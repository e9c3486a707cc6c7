package backend

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"
	"time"

	"github.com/longbridgeapp/assert"

	"github.com/hyp3rd/hyperstats/internal/libs/serializer"
	"github.com/hyp3rd/hyperstats/internal/sentinel"
	redisstore "github.com/hyp3rd/hyperstats/pkg/backend/redis"
)

func TestNewRedis_NilClient(t *testing.T) {
	_, err := NewRedis()
	if !errors.Is(err, sentinel.ErrNilClient) {
		t.Fatalf("expected ErrNilClient, got %v", err)
	}
}

// newTestRedis connects to HYPERSTATS_TEST_REDIS_ADDR and skips when it is unset or unreachable.
func newTestRedis(t *testing.T, opts ...Option[Redis]) *Redis {
	t.Helper()

	addr := os.Getenv("HYPERSTATS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("HYPERSTATS_TEST_REDIS_ADDR not set")
	}

	store, err := redisstore.New(redisstore.WithAddrs(addr))
	assert.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}

	opts = append([]Option[Redis]{WithRedisClient(store.Client), WithKeysSetName("hyperstats-test-" + t.Name())}, opts...)

	rb, err := NewRedis(opts...)
	assert.NoError(t, err)

	t.Cleanup(func() { _ = rb.Clear(context.Background()) })

	return rb
}

func TestRedis_RoundTrip(t *testing.T) {
	for _, name := range []string{"default", "msgpack", "cbor"} {
		t.Run(name, func(t *testing.T) {
			ser, err := serializer.New(name)
			assert.NoError(t, err)

			rb := newTestRedis(t, WithSerializer(ser))
			ctx := context.Background()

			// two samples: sample skewness is undefined and must survive as NaN
			report := mustReport(t, 1, 2)
			assert.NoError(t, rb.Set(ctx, "k", report, time.Minute))

			got, ok := rb.Get(ctx, "k")
			assert.True(t, ok)
			assert.Equal(t, report.ReceivedNumbers, got.ReceivedNumbers)
			assert.Equal(t, report.Mean, got.Mean)
			assert.True(t, math.IsNaN(got.Skewness))
			assert.Equal(t, 1, rb.Count(ctx))

			assert.NoError(t, rb.Remove(ctx, "k"))

			_, ok = rb.Get(ctx, "k")
			assert.False(t, ok)
		})
	}
}

func TestRedis_Capacity(t *testing.T) {
	rb := newTestRedis(t, WithCapacity[Redis](1))
	ctx := context.Background()

	assert.NoError(t, rb.Set(ctx, "a", mustReport(t, 1), time.Minute))
	assert.NoError(t, rb.Set(ctx, "a", mustReport(t, 2), time.Minute))

	if err := rb.Set(ctx, "b", mustReport(t, 3), time.Minute); !errors.Is(err, sentinel.ErrCacheFull) {
		t.Fatalf("expected ErrCacheFull, got %v", err)
	}

	assert.NoError(t, rb.Clear(ctx))
	assert.Equal(t, 0, rb.Count(ctx))
}
