package mq

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrBrokerClosed Broker 已关闭
var ErrBrokerClosed = errors.New("broker closed")

type channelMessage struct {
	key     string
	payload []byte
}

// ChannelBroker 进程内 Worker Pool
// 通道满时降级为同步执行，保证消息不丢
type ChannelBroker struct {
	queue   chan channelMessage
	workers int

	mu      sync.RWMutex
	handler Handler
	closed  bool

	wg sync.WaitGroup
}

// NewChannelBroker 创建 ChannelBroker
func NewChannelBroker(workers, bufferSize int) *ChannelBroker {
	if workers <= 0 {
		workers = 1
	}
	if bufferSize < 0 {
		bufferSize = 0
	}
	return &ChannelBroker{
		queue:   make(chan channelMessage, bufferSize),
		workers: workers,
	}
}

// Start 启动 Worker
func (b *ChannelBroker) Start(handler Handler) {
	b.mu.Lock()
	b.handler = handler
	b.mu.Unlock()

	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.worker()
	}
	zap.L().Info("Channel broker workers started", zap.Int("workers", b.workers), zap.Int("buffer", cap(b.queue)))
}

func (b *ChannelBroker) worker() {
	defer b.wg.Done()
	for msg := range b.queue {
		b.dispatch(msg)
	}
}

// dispatch 执行 handler，panic 不会终止 Worker
func (b *ChannelBroker) dispatch(msg channelMessage) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("Channel broker handler panic", zap.Any("recover", rec), zap.String("key", msg.key))
		}
	}()

	b.mu.RLock()
	handler := b.handler
	b.mu.RUnlock()
	if handler == nil {
		zap.L().Warn("Channel broker has no handler, dropping message", zap.String("key", msg.key))
		return
	}
	if err := handler(context.Background(), msg.payload); err != nil {
		zap.L().Error("Channel broker handler error", zap.String("key", msg.key), zap.Error(err))
	}
}

// Publish 放入通道；通道满时在调用方 goroutine 同步执行
func (b *ChannelBroker) Publish(_ context.Context, key string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBrokerClosed
	}

	msg := channelMessage{key: key, payload: payload}
	select {
	case b.queue <- msg:
	default:
		// 降级：同步执行
		zap.L().Warn("Channel broker queue full, executing synchronously", zap.String("key", key))
		b.mu.RUnlock()
		b.dispatch(msg)
		b.mu.RLock()
	}
	return nil
}

// Close 关闭通道并等待 Worker 处理完剩余消息
func (b *ChannelBroker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.queue)
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}

var _ Broker = (*ChannelBroker)(nil)
