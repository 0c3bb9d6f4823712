// internal/service/offer/infrastructure/adapter/offer_locker.go
package adapter

import (
	"context"
	"time"

	"gpoffer/internal/pkg/lock"
	"gpoffer/internal/pkg/redis"
)

// LocalOfferLocker 用进程内 KeyedMutex 实现 port.OfferLocker。
// 单实例部署的默认选择：同一报价串行，不同报价并行。
type LocalOfferLocker struct {
	mutex *lock.KeyedMutex
}

func NewLocalOfferLocker() *LocalOfferLocker {
	return &LocalOfferLocker{mutex: lock.NewKeyedMutex()}
}

func (l *LocalOfferLocker) Lock(ctx context.Context, offerID string) (func(), error) {
	l.mutex.Lock(offerID)
	return func() { l.mutex.Unlock(offerID) }, nil
}

const (
	redisLockTTL   = 10 * time.Second
	redisLockRetry = 20 * time.Millisecond
)

// RedisOfferLocker 用 Redis SET NX 锁实现 port.OfferLocker，
// 供多实例部署使用。拿不到锁时按固定间隔重试，直到 ctx 取消。
type RedisOfferLocker struct {
	client *redis.Client
}

func NewRedisOfferLocker(client *redis.Client) *RedisOfferLocker {
	return &RedisOfferLocker{client: client}
}

func (l *RedisOfferLocker) Lock(ctx context.Context, offerID string) (func(), error) {
	key := "gpoffer:lock:offer:{" + offerID + "}"
	for {
		held, err := l.client.TryLock(ctx, key, redisLockTTL)
		if err != nil {
			return nil, err
		}
		if held != nil {
			return func() {
				// 释放用独立的短超时 ctx：调用方的 ctx 此时可能已经取消
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = held.Unlock(releaseCtx)
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(redisLockRetry):
		}
	}
}
