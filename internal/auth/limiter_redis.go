package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	attemptKeyPrefix = "login:attempts:"
	lockKeyPrefix    = "login:lock:"
)

// RedisLimiter は Redis に状態を保存する Limiter です。複数インスタンス間でロックを共有できます。
type RedisLimiter struct {
	rdb  redis.Cmdable
	opts LimiterOptions
}

// NewRedisLimiter は RedisLimiter を生成します。
func NewRedisLimiter(rdb redis.Cmdable, opts LimiterOptions) *RedisLimiter {
	return &RedisLimiter{
		rdb:  rdb,
		opts: opts.normalized(),
	}
}

func (l *RedisLimiter) Check(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := l.rdb.PTTL(ctx, lockKeyPrefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("check login lock: %w", err)
	}
	// キーが存在しない場合は負の値が返る
	if ttl <= 0 {
		return 0, nil
	}
	return ttl, nil
}

func (l *RedisLimiter) RecordFailure(ctx context.Context, key string) (int, error) {
	attemptKey := attemptKeyPrefix + key

	count64, err := l.rdb.Incr(ctx, attemptKey).Result()
	if err != nil {
		return 0, fmt.Errorf("record login failure: %w", err)
	}
	// 初回失敗時のみ期間を設定する
	if count64 == 1 {
		if err := l.rdb.Expire(ctx, attemptKey, l.opts.Window).Err(); err != nil {
			return 0, fmt.Errorf("record login failure: %w", err)
		}
	}

	count := int(count64)
	if count >= l.opts.MaxAttempts {
		pipe := l.rdb.TxPipeline()
		pipe.Set(ctx, lockKeyPrefix+key, 1, l.opts.LockDuration)
		pipe.Del(ctx, attemptKey)
		if _, err := pipe.Exec(ctx); err != nil {
			return 0, fmt.Errorf("lock login: %w", err)
		}
		return 0, nil
	}
	return l.opts.MaxAttempts - count, nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	err := l.rdb.Del(ctx, attemptKeyPrefix+key, lockKeyPrefix+key).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("reset login attempts: %w", err)
	}
	return nil
}

// NewRedisClient は URL から Redis クライアントを生成し疎通確認を行います。
func NewRedisClient(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
