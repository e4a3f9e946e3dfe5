// Package router 提供 HTTP 路由注册
// 本文件定义 WebSocket 相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes 注册 WebSocket 路由
// 实时推送只包含公开的功能请求，不要求登录
// 请求示例: ws://host:port/api/v1/ws/votes
func (rt *Router) RegisterWebSocketRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws/votes", rt.handlers.Ws.Votes)
}
