// Package mq 提供后台任务队列
// 支持两种实现：ChannelBroker（单机，进程内 Worker Pool）和 KafkaBroker（分布式）
package mq

import "context"

// Handler 消费单条消息
// 返回的错误只用于日志，不会触发重试
type Handler func(ctx context.Context, payload []byte) error

// Broker 消息代理接口
type Broker interface {
	// Publish 发布消息，key 用于 Kafka 分区
	Publish(ctx context.Context, key string, payload []byte) error
	// Start 启动消费循环，非阻塞
	Start(handler Handler)
	// Close 停止消费并释放资源，等待已取出的消息处理完毕
	Close() error
}
