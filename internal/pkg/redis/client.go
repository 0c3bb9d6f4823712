// internal/pkg/redis/client.go
package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Client 是对 go-redis 的薄封装，集中管理连接与锁脚本。
type Client struct {
	rdb *goredis.Client
}

func NewClient(addr string) *Client {
	return &Client{
		rdb: goredis.NewClient(&goredis.Options{Addr: addr}),
	}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// releaseScript 保证只有持有者才能释放锁：value 比对与 DEL 在脚本内原子完成。
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`)

// Lock 表示一把已持有的分布式锁。
type Lock struct {
	client *Client
	key    string
	token  string
}

// TryLock 以 SET NX 的方式尝试获取 key 上的锁。
// 获取失败（别人持有）时返回 (nil, nil)，调用方自行决定重试策略。
func (c *Client) TryLock(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	token := uuid.NewString()
	ok, err := c.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &Lock{client: c, key: key, token: token}, nil
}

// Unlock 释放锁。锁已过期或被他人持有时是 no-op。
func (l *Lock) Unlock(ctx context.Context) error {
	return releaseScript.Run(ctx, l.client.rdb, []string{l.key}, l.token).Err()
}
