package router

import (
	"bot_dashboard/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterVoteRoutes 注册功能请求路由
func (rt *Router) RegisterVoteRoutes(rg *gin.RouterGroup) {
	h := rt.handlers.FeatureRequest

	voteGroup := rg.Group("/vote")
	{
		// 公开接口，登录后管理员可查看待审核请求
		voteGroup.GET("/list", h.List)
		voteGroup.GET("/get", h.Get)
	}

	authGroup := rg.Group("/vote")
	authGroup.Use(middleware.JWTAuth())
	{
		authGroup.POST("/add", h.Add)
		authGroup.POST("/approve", h.Approve)
		authGroup.POST("/update", h.Update)
		authGroup.POST("/delete", h.Delete)
		authGroup.POST("/addvote", h.AddVote)
	}
}
