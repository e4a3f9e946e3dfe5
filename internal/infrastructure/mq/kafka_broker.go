package mq

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"bot_dashboard/internal/config"
)

// KafkaBroker 基于 Kafka 的 Broker
// Producer 写入主题，Consumer 以消费者组读取并交给 handler
type KafkaBroker struct {
	Producer *kafka.Writer // 生产者：负责写入消息
	Consumer *kafka.Reader // 消费者：负责读取消息

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewKafkaBroker 根据配置创建 Producer 与 Consumer
func NewKafkaBroker(conf *config.NotifyConfig) *KafkaBroker {
	timeout := conf.Timeout * time.Second
	if timeout <= 0 {
		timeout = time.Second
	}
	groupID := conf.GroupID
	if groupID == "" {
		groupID = "bot_dashboard"
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &KafkaBroker{
		Producer: &kafka.Writer{
			Addr:                   kafka.TCP(conf.HostPort),
			Topic:                  conf.Topic,
			Balancer:               &kafka.Hash{},
			WriteTimeout:           timeout,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		Consumer: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        []string{conf.HostPort},
			Topic:          conf.Topic,
			CommitInterval: timeout,
			GroupID:        groupID,
			StartOffset:    kafka.LastOffset,
		}),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Publish 写入一条消息
func (k *KafkaBroker) Publish(ctx context.Context, key string, payload []byte) error {
	return k.Producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
}

// Start 启动后台消费循环
func (k *KafkaBroker) Start(handler Handler) {
	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		for {
			msg, err := k.Consumer.ReadMessage(k.ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
					return
				}
				zap.L().Error("Kafka read message error", zap.Error(err))
				// 连接异常时稍等再重试，避免空转
				select {
				case <-k.ctx.Done():
					return
				case <-time.After(time.Second):
				}
				continue
			}
			k.handle(handler, msg)
		}
	}()
	zap.L().Info("Kafka broker consumer started", zap.String("topic", k.Consumer.Config().Topic))
}

// handle 单条消息的错误边界
func (k *KafkaBroker) handle(handler Handler, msg kafka.Message) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("Kafka handler panic", zap.Any("recover", rec), zap.Int64("offset", msg.Offset))
		}
	}()
	if err := handler(k.ctx, msg.Value); err != nil {
		zap.L().Error("Kafka handler error",
			zap.String("key", string(msg.Key)),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
	}
}

// Close 停止消费并关闭连接
func (k *KafkaBroker) Close() error {
	k.cancel()
	k.wg.Wait()
	return errors.Join(k.Producer.Close(), k.Consumer.Close())
}

var _ Broker = (*KafkaBroker)(nil)
