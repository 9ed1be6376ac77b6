package auth

import (
	"context"
	"sync"
	"time"
)

// Limiter はクライアント単位でログイン失敗回数を数え、上限到達で一定時間ロックします。
type Limiter interface {
	// Check はロック中であれば解除までの残り時間を返します。ロックされていなければ 0 です。
	Check(ctx context.Context, key string) (time.Duration, error)
	// RecordFailure は失敗を記録し、ロックまでの残り回数を返します。
	RecordFailure(ctx context.Context, key string) (int, error)
	// Reset は記録を消去します。
	Reset(ctx context.Context, key string) error
}

// LimiterOptions は試行制限のパラメータです。
type LimiterOptions struct {
	MaxAttempts  int
	Window       time.Duration // 失敗回数を数える期間
	LockDuration time.Duration
}

// DefaultLimiterOptions は 15 分間に 5 回失敗で 10 分ロックする設定を返します。
func DefaultLimiterOptions() LimiterOptions {
	return LimiterOptions{
		MaxAttempts:  5,
		Window:       15 * time.Minute,
		LockDuration: 10 * time.Minute,
	}
}

func (o LimiterOptions) normalized() LimiterOptions {
	def := DefaultLimiterOptions()
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = def.MaxAttempts
	}
	if o.Window <= 0 {
		o.Window = def.Window
	}
	if o.LockDuration <= 0 {
		o.LockDuration = def.LockDuration
	}
	return o
}

type attemptState struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// MemoryLimiter はプロセス内メモリで状態を保持する Limiter です。
type MemoryLimiter struct {
	opts     LimiterOptions
	now      func() time.Time
	lock     sync.Mutex
	attempts map[string]*attemptState
}

// NewMemoryLimiter は MemoryLimiter を生成します。
func NewMemoryLimiter(opts LimiterOptions) *MemoryLimiter {
	return &MemoryLimiter{
		opts:     opts.normalized(),
		now:      time.Now,
		attempts: make(map[string]*attemptState),
	}
}

func (l *MemoryLimiter) Check(_ context.Context, key string) (time.Duration, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	state, ok := l.attempts[key]
	if !ok {
		return 0, nil
	}
	now := l.now()
	if !now.Before(state.lockedUntil) {
		return 0, nil
	}
	return state.lockedUntil.Sub(now), nil
}

func (l *MemoryLimiter) RecordFailure(_ context.Context, key string) (int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	now := l.now()
	state, ok := l.attempts[key]
	if !ok || now.Sub(state.firstAttempt) > l.opts.Window {
		state = &attemptState{firstAttempt: now}
		l.attempts[key] = state
	}

	state.count++
	if state.count >= l.opts.MaxAttempts {
		state.lockedUntil = now.Add(l.opts.LockDuration)
		state.count = l.opts.MaxAttempts
	}

	remaining := l.opts.MaxAttempts - state.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	delete(l.attempts, key)
	return nil
}
