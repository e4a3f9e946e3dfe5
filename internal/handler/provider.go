// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
package handler

import (
	"bot_dashboard/internal/service"
)

// Handlers 聚合所有 Handler 实例
// Router 层通过此结构访问各个 Handler
type Handlers struct {
	FeatureRequest *FeatureRequestHandler
	User           *UserHandler
	Ws             *WsHandler
}

// NewHandlers 创建并注入所有 Handler 实例
func NewHandlers(svc *service.Services, ws WsServer) *Handlers {
	return &Handlers{
		FeatureRequest: NewFeatureRequestHandler(svc.Vote),
		User:           NewUserHandler(svc.Vote),
		Ws:             NewWsHandler(ws),
	}
}
