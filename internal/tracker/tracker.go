// Package tracker keeps in-flight job counters in Redis so every bot and
// worker process sees the same numbers.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wapuda/tg-grabber/internal/logx"
)

// counters expire so a crashed process cannot pin them forever
const defaultTTL = time.Hour

const keyActiveAll = "active:all"

func keyActive(chatID int64) string { return fmt.Sprintf("active:%d", chatID) }

type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb, ttl: defaultTTL}
}

// Begin counts a job as running until the returned func is called.
// Redis trouble is logged and never fails the job.
func (r *Redis) Begin(ctx context.Context, chatID int64) func() {
	log := logx.FromCtx(ctx)
	if err := r.add(ctx, chatID, 1); err != nil {
		log.Warn().Err(err).Msg("tracker: incr failed")
		return func() {}
	}
	return func() {
		if err := r.add(context.WithoutCancel(ctx), chatID, -1); err != nil {
			log.Warn().Err(err).Msg("tracker: decr failed")
		}
	}
}

func (r *Redis) add(ctx context.Context, chatID int64, delta int64) error {
	pipe := r.rdb.TxPipeline()
	for _, k := range []string{keyActive(chatID), keyActiveAll} {
		pipe.IncrBy(ctx, k, delta)
		pipe.Expire(ctx, k, r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Active returns the running jobs of one chat and of all chats.
func (r *Redis) Active(ctx context.Context, chatID int64) (chat, total int64, err error) {
	vals, err := r.rdb.MGet(ctx, keyActive(chatID), keyActiveAll).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("read active counters: %w", err)
	}
	chat, err = toCount(vals[0])
	if err != nil {
		return 0, 0, err
	}
	total, err = toCount(vals[1])
	return chat, total, err
}

func toCount(v any) (int64, error) {
	if v == nil {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, errors.New("unexpected counter type")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse counter %q: %w", s, err)
	}
	// a counter can dip below zero after it expired mid-job
	return max(n, 0), nil
}
