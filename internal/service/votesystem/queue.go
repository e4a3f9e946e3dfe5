package votesystem

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"bot_dashboard/internal/infrastructure/metrics"
)

// JobQueue 通知任务队列，Enqueue 不阻塞调用方也不返回错误
type JobQueue interface {
	Enqueue(ctx context.Context, job NotificationJob)
}

// Publisher 消息发布方，由 mq.Broker 实现
type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

type brokerQueue struct {
	pub Publisher
}

// NewBrokerQueue 将通知任务序列化后交给 Broker
func NewBrokerQueue(pub Publisher) JobQueue {
	return &brokerQueue{pub: pub}
}

func (q *brokerQueue) Enqueue(ctx context.Context, job NotificationJob) {
	data, err := json.Marshal(job)
	if err != nil {
		zap.L().Error("marshal notification job", zap.Error(err))
		metrics.ObserveNotification(string(job.Kind), err)
		return
	}
	// 请求结束后任务仍需投递，不继承请求的取消信号
	if err := q.pub.Publish(context.WithoutCancel(ctx), string(job.Kind), data); err != nil {
		zap.L().Error("publish notification job", zap.String("kind", string(job.Kind)), zap.Error(err))
		metrics.ObserveNotification(string(job.Kind), err)
	}
}
