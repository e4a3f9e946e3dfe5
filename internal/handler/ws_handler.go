// Package handler 提供 HTTP 请求处理器
// 本文件处理 WebSocket 实时推送连接
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WsServer 接收 WebSocket 连接的服务端
type WsServer interface {
	ServeWs(w http.ResponseWriter, r *http.Request) error
}

// WsHandler WebSocket 处理器
type WsHandler struct {
	server WsServer
}

// NewWsHandler 创建 WebSocket 处理器实例
func NewWsHandler(server WsServer) *WsHandler {
	return &WsHandler{server: server}
}

// Votes 订阅功能请求的实时变更
// GET /ws/votes
// 升级失败时 upgrader 已写入响应，这里只记录日志
func (h *WsHandler) Votes(c *gin.Context) {
	if err := h.server.ServeWs(c.Writer, c.Request); err != nil {
		zap.L().Warn("websocket upgrade failed", zap.String("ClientIP", c.ClientIP()), zap.Error(err))
	}
}
