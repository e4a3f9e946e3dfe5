// Package redis 提供 Redis 缓存操作的封装
// 本文件仅包含 Redis 连接初始化逻辑
package redis

import (
	"context"
	"net"
	"strconv"
	"time"

	"bot_dashboard/internal/config"

	"github.com/redis/go-redis/v9"
)

// Init 初始化 Redis 连接并返回缓存服务实例
// 连接失败时返回错误，由调用方决定是否降级为无缓存运行
func Init(conf *config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(conf.Host, strconv.Itoa(conf.Port)),
		Password: conf.Password,
		DB:       conf.Db,
		// 连接池配置
		PoolSize:     50,
		MinIdleConns: conf.Workers, // 与 Worker 数量匹配
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewRedisCache(client, conf.Workers, conf.Buffer), nil
}
