package router

import (
	"bot_dashboard/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterInternalRoutes 注册前端内部使用的接口
func (rt *Router) RegisterInternalRoutes(rg *gin.RouterGroup) {
	internalGroup := rg.Group("/internal")
	internalGroup.Use(middleware.JWTAuth())
	{
		internalGroup.GET("/user", rt.handlers.User.Current)
	}
}
