package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"onboard-pay/internal/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound 键不存在（对 redis.Nil 的封装）
var ErrNotFound = errors.New("redis: key not found")

// Config Redis 配置
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Client Redis 客户端封装，所有操作都会记录指标
type Client struct {
	*redis.Client
	service string
}

// NewClient 创建 Redis 客户端并测试连接
func NewClient(cfg Config, service string) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connect %s: %w", cfg.Addr, err)
	}

	if service == "" {
		service = metrics.GetServiceName()
	}

	return &Client{
		Client:  rdb,
		service: service,
	}, nil
}

// observe 记录一次操作的指标，键不存在不算错误
func (c *Client) observe(operation string, start time.Time, err error) {
	failed := err != nil && !errors.Is(err, redis.Nil)
	metrics.DefaultResourceMetrics.RecordRedisOperation(operation, !failed, time.Since(start), c.service)
	if failed {
		metrics.DefaultResourceMetrics.RecordRedisError("operation_error", c.service)
	}
}

// SetWithTTL 设置键值对，带过期时间
func (c *Client) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	start := time.Now()
	err := c.Set(ctx, key, value, ttl).Err()
	c.observe("SET", start, err)
	return err
}

// SetNX 键不存在时设置，返回是否设置成功
func (c *Client) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	start := time.Now()
	ok, err := c.Client.SetNX(ctx, key, value, ttl).Result()
	c.observe("SETNX", start, err)
	return ok, err
}

// GetString 获取字符串值，不存在时返回 ErrNotFound
func (c *Client) GetString(ctx context.Context, key string) (string, error) {
	start := time.Now()
	result, err := c.Get(ctx, key).Result()
	c.observe("GET", start, err)
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return result, err
}

// Exists 检查键是否存在
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	start := time.Now()
	n, err := c.Client.Exists(ctx, key).Result()
	c.observe("EXISTS", start, err)
	return n > 0, err
}

// DeleteKey 删除键
func (c *Client) DeleteKey(ctx context.Context, keys ...string) error {
	start := time.Now()
	err := c.Del(ctx, keys...).Err()
	c.observe("DEL", start, err)
	return err
}

// HSetWithTTL 在一个事务中写入哈希字段并设置过期时间
func (c *Client) HSetWithTTL(ctx context.Context, key string, ttl time.Duration, fields map[string]interface{}) error {
	start := time.Now()
	pipe := c.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	c.observe("HSET", start, err)
	return err
}

// HGetAllMap 读取整个哈希，不存在时返回 ErrNotFound
func (c *Client) HGetAllMap(ctx context.Context, key string) (map[string]string, error) {
	start := time.Now()
	vals, err := c.HGetAll(ctx, key).Result()
	c.observe("HGETALL", start, err)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, ErrNotFound
	}
	return vals, nil
}

// HIncr 哈希字段自增 1，返回自增后的值
func (c *Client) HIncr(ctx context.Context, key, field string) (int64, error) {
	start := time.Now()
	n, err := c.HIncrBy(ctx, key, field, 1).Result()
	c.observe("HINCRBY", start, err)
	return n, err
}

// Healthy 连通性探测
func (c *Client) Healthy(ctx context.Context) error {
	start := time.Now()
	err := c.Ping(ctx).Err()
	c.observe("PING", start, err)
	return err
}
