package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/microblog/config"
	"github.com/d60-Lab/microblog/pkg/logger"
)

// CountKind 计数类型
type CountKind string

const (
	Followers CountKind = "followers"
	Following CountKind = "following"
)

// CountCache 关注/粉丝数的 cache-aside 缓存；redis 故障按未命中处理
type CountCache struct {
	client *redis.Client
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
	stale  atomic.Int64
}

// 版本号存活时间远大于一次读库回填的窗口
const versionTTL = 24 * time.Hour

var errStaleVersion = errors.New("count cache: version changed")

// NewClient 按配置创建 redis 客户端并 ping
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func NewCountCache(client *redis.Client, ttl time.Duration) *CountCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CountCache{client: client, ttl: ttl}
}

func countKey(kind CountKind, userID uint64) string {
	return fmt.Sprintf("count:%s:%d", kind, userID)
}

func versionKey(kind CountKind, userID uint64) string {
	return fmt.Sprintf("count:ver:%s:%d", kind, userID)
}

// Get 命中返回 (n, _, true)；未命中时返回当前版本号，回填时原样交给 Set
func (c *CountCache) Get(ctx context.Context, kind CountKind, userID uint64) (n int64, version int64, ok bool) {
	pipe := c.client.Pipeline()
	valCmd := pipe.Get(ctx, countKey(kind, userID))
	verCmd := pipe.Get(ctx, versionKey(kind, userID))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		logger.Warn("count cache get failed", zap.String("kind", string(kind)), zap.Uint64("user", userID), zap.Error(err))
		c.misses.Add(1)
		return 0, 0, false
	}
	version, _ = verCmd.Int64()

	val, err := valCmd.Result()
	if err != nil {
		c.misses.Add(1)
		return 0, version, false
	}
	n, err = strconv.ParseInt(val, 10, 64)
	if err != nil {
		c.misses.Add(1)
		return 0, version, false
	}
	c.hits.Add(1)
	return n, version, true
}

// Set 仅当版本号仍等于 Get 时读到的值才写入，读库期间发生过失效则放弃回填
func (c *CountCache) Set(ctx context.Context, kind CountKind, userID uint64, n, version int64) {
	vk := versionKey(kind, userID)
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, vk).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != version {
			return errStaleVersion
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, countKey(kind, userID), n, c.ttl)
			return nil
		})
		return err
	}, vk)

	switch {
	case err == nil:
	case errors.Is(err, errStaleVersion), errors.Is(err, redis.TxFailedErr):
		c.stale.Add(1)
		logger.Debug("count cache fill skipped", zap.String("kind", string(kind)), zap.Uint64("user", userID))
	default:
		logger.Warn("count cache set failed", zap.String("kind", string(kind)), zap.Uint64("user", userID), zap.Error(err))
	}
}

// InvalidateEdge 一条边变化影响 followed 的粉丝数与 follower 的关注数；
// 删除缓存并递增版本号，使并发中的旧值回填失效
func (c *CountCache) InvalidateEdge(ctx context.Context, followerID, followedID uint64) {
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, k := range []struct {
			kind CountKind
			id   uint64
		}{{Followers, followedID}, {Following, followerID}} {
			p.Del(ctx, countKey(k.kind, k.id))
			p.Incr(ctx, versionKey(k.kind, k.id))
			p.Expire(ctx, versionKey(k.kind, k.id), versionTTL)
		}
		return nil
	})
	if err != nil {
		logger.Warn("count cache invalidate failed", zap.Uint64("follower", followerID), zap.Uint64("followed", followedID), zap.Error(err))
	}
}

// Stats 命中统计；StaleFills 为因并发失效而放弃的回填次数
type Stats struct {
	Hits       int64
	Misses     int64
	StaleFills int64
}

func (c *CountCache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), StaleFills: c.stale.Load()}
}

// ResetStats 清零统计，基准测试预热后调用
func (c *CountCache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.stale.Store(0)
}
