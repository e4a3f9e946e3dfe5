// Package metrics 定义 Prometheus 指标，通过 /metrics 暴露
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bot_dashboard/pkg/errorx"
)

var (
	// operationsTotal 投票系统操作计数，result 为 HTTP 状态码对应的结果
	operationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bot_dashboard",
		Subsystem: "vote",
		Name:      "operations_total",
		Help:      "Feature request operations by name and result.",
	}, []string{"operation", "result"})

	// notificationsTotal 通知投递计数
	notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bot_dashboard",
		Subsystem: "notify",
		Name:      "deliveries_total",
		Help:      "Notification deliveries by kind and result.",
	}, []string{"kind", "result"})
)

func init() {
	prometheus.MustRegister(operationsTotal, notificationsTotal)
}

// ObserveOperation 记录一次操作结果
func ObserveOperation(operation string, err error) {
	operationsTotal.WithLabelValues(operation, result(err)).Inc()
}

// ObserveNotification 记录一次通知投递结果
func ObserveNotification(kind string, err error) {
	notificationsTotal.WithLabelValues(kind, result(err)).Inc()
}

// Handler 返回 Prometheus 抓取端点
func Handler() http.Handler {
	return promhttp.Handler()
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	switch code := errorx.GetCode(err); {
	case code >= http.StatusInternalServerError:
		return "error"
	default:
		return "rejected"
	}
}
