package service

import (
	"context"
	"time"

	"onboard-pay/internal/pkg/xerrors"
)

const keyActivation = "signup:activation:"

// RedisSessionGuard 用 SETNX 保证同一个支付会话只激活一次
type RedisSessionGuard struct {
	store KeyValueStore
	ttl   time.Duration
}

// NewRedisSessionGuard 创建会话防重放守卫
func NewRedisSessionGuard(store KeyValueStore, ttl time.Duration) *RedisSessionGuard {
	return &RedisSessionGuard{store: store, ttl: ttl}
}

// Claim 返回 false 表示会话已经被占用
func (g *RedisSessionGuard) Claim(ctx context.Context, sessionID string) (bool, error) {
	ok, err := g.store.SetNX(ctx, keyActivation+sessionID, time.Now().Unix(), g.ttl)
	if err != nil {
		return false, xerrors.NewCacheError("session_claim", err).
			WithService("session_guard", "Claim").
			WithSession(sessionID)
	}
	return ok, nil
}

// Release 激活失败时释放，允许用户重试
func (g *RedisSessionGuard) Release(ctx context.Context, sessionID string) error {
	if err := g.store.DeleteKey(ctx, keyActivation+sessionID); err != nil {
		return xerrors.NewCacheError("session_release", err).
			WithService("session_guard", "Release").
			WithSession(sessionID)
	}
	return nil
}
