package worker

// retry_cron.go
// Failed jobs wait in a sorted set scored by their next attempt time. A
// background goroutine periodically moves the due ones back to their queue.

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	RetryKey          = "jobs:reintentos"
	retryTickInterval = 10 * time.Second
	retryBatchSize    = 50
)

func programarReintento(ctx context.Context, rdb *redis.Client, job Job, cuando time.Time) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.ZAdd(ctx, RetryKey, redis.Z{Score: float64(cuando.Unix()), Member: data}).Err()
}

// StartRetryCron launches a background goroutine that re-queues due retries
// every tick. It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, rdb *redis.Client) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				if n, err := reencolarVencidos(ctx, rdb, time.Now()); err != nil {
					log.Error().Err(err).Msg("retry_cron: failed to re-queue jobs")
				} else if n > 0 {
					log.Info().Int("count", n).Msg("retry_cron: jobs re-queued")
				}
			}
		}
	}()
}

// reencolarVencidos moves every retry due at or before now back to its
// queue and returns how many were moved. ZREM decides ownership, so two
// replicas ticking together never re-queue the same job twice.
func reencolarVencidos(ctx context.Context, rdb *redis.Client, now time.Time) (int, error) {
	vencidos, err := rdb.ZRangeByScore(ctx, RetryKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: retryBatchSize,
	}).Result()
	if err != nil {
		return 0, err
	}

	movidos := 0
	for _, raw := range vencidos {
		removed, err := rdb.ZRem(ctx, RetryKey, raw).Result()
		if err != nil {
			return movidos, err
		}
		if removed == 0 {
			continue
		}
		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			SendToDLQ(ctx, rdb, RetryKey, "", json.RawMessage(raw), "reintento ilegible", 0)
			continue
		}
		queue := queueDeTipo(job.Type)
		if err := rdb.LPush(ctx, queue, raw).Err(); err != nil {
			return movidos, err
		}
		movidos++
	}
	return movidos, nil
}
