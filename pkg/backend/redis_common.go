package backend

import (
	"context"
	"errors"
	"time"

	"github.com/hyp3rd/ewrap"
	"github.com/redis/go-redis/v9"

	"github.com/hyp3rd/hyperstats/internal/libs/serializer"
	"github.com/hyp3rd/hyperstats/pkg/stats"
)

// dataField is the hash field holding the encoded report.
const dataField = "data"

// Every helper issues one command per key so the same code serves single-node and cluster clients.

func redisGet(ctx context.Context, client redis.UniversalClient, key string, ser serializer.ISerializer) (*stats.Report, bool) {
	data, err := client.HGet(ctx, key, dataField).Bytes()
	if err != nil {
		// redis.Nil means the key is missing or expired
		return nil, false
	}

	report := &stats.Report{}

	err = ser.Unmarshal(data, report)
	if err != nil {
		return nil, false
	}

	return report, true
}

func redisSet(
	ctx context.Context,
	client redis.UniversalClient,
	keysSetName, key string,
	report *stats.Report,
	ttl time.Duration,
	ser serializer.ISerializer,
) error {
	data, err := ser.Marshal(report)
	if err != nil {
		return ewrap.Wrap(err, "failed to serialize report")
	}

	_, err = client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, dataField, data, "variant", report.Variant, "count", report.Count)
		// Track key and TTL
		pipe.SAdd(ctx, keysSetName, key)

		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		} else {
			pipe.Persist(ctx, key)
		}

		return nil
	})
	if err != nil {
		return ewrap.Wrap(err, "failed to execute redis pipeline")
	}

	return nil
}

// redisLiveKeys returns the members of the key set whose hash still exists and prunes the rest.
func redisLiveKeys(ctx context.Context, client redis.UniversalClient, keysSetName string) ([]string, error) {
	keys, err := client.SMembers(ctx, keysSetName).Result()
	if err != nil {
		return nil, ewrap.Wrap(err, "failed to get keys from redis")
	}

	if len(keys) == 0 {
		return keys, nil
	}

	cmds := make([]*redis.IntCmd, len(keys))

	_, err = client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			cmds[i] = pipe.Exists(ctx, key)
		}

		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, ewrap.Wrap(err, "failed to execute redis pipeline while counting")
	}

	live := make([]string, 0, len(keys))
	stale := make([]any, 0)

	for i, cmd := range cmds {
		if cmd.Val() > 0 {
			live = append(live, keys[i])
		} else {
			stale = append(stale, keys[i])
		}
	}

	if len(stale) > 0 {
		err = client.SRem(ctx, keysSetName, stale...).Err()
		if err != nil {
			return nil, ewrap.Wrap(err, "pruning expired keys")
		}
	}

	return live, nil
}

func redisRemove(ctx context.Context, client redis.UniversalClient, keysSetName string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	members := make([]any, len(keys))
	for i, key := range keys {
		members[i] = key
	}

	_, err := client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SRem(ctx, keysSetName, members...)

		for _, key := range keys {
			pipe.Del(ctx, key)
		}

		return nil
	})

	return ewrap.Wrap(err, "executing pipeline")
}

func redisClear(ctx context.Context, client redis.UniversalClient, keysSetName string) error {
	keys, err := client.SMembers(ctx, keysSetName).Result()
	if err != nil {
		return ewrap.Wrap(err, "failed to get keys from redis")
	}

	err = redisRemove(ctx, client, keysSetName, keys...)
	if err != nil {
		return err
	}

	return ewrap.Wrap(client.Del(ctx, keysSetName).Err(), "removing key set")
}
