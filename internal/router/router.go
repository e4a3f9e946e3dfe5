// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"bot_dashboard/internal/handler"
	"bot_dashboard/internal/infrastructure/metrics"
	"bot_dashboard/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 路由管理器
type Router struct {
	handlers *handler.Handlers
	pageView middleware.PageViewTracker
}

// NewRouter 创建路由管理器，pageView 为 nil 时不统计页面访问
func NewRouter(handlers *handler.Handlers, pageView middleware.PageViewTracker) *Router {
	return &Router{handlers: handlers, pageView: pageView}
}

// RegisterRoutes 注册所有路由
// 身份解析与页面访问统计挂在引擎根部，之后注册的页面路由同样生效
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	r.Use(middleware.OptionalJWTAuth())
	if rt.pageView != nil {
		r.Use(middleware.PageView(rt.pageView))
	}

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api/v1")

	rt.RegisterVoteRoutes(api)
	rt.RegisterInternalRoutes(api)
	rt.RegisterWebSocketRoutes(api)
}
