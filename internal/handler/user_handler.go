// Package handler 提供 HTTP 请求处理器
// 本文件处理当前用户相关的 API 请求
package handler

import (
	"bot_dashboard/internal/dto/respond"
	"bot_dashboard/internal/infrastructure/middleware"
	"bot_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户请求处理器
type UserHandler struct {
	voteSvc service.VoteService
}

// NewUserHandler 创建用户处理器实例
func NewUserHandler(voteSvc service.VoteService) *UserHandler {
	return &UserHandler{voteSvc: voteSvc}
}

// Current 当前登录用户及其是否为开发者
// GET /internal/user
// 响应: respond.UserRespond
func (h *UserHandler) Current(c *gin.Context) {
	userID := middleware.GetUserID(c)
	HandleSuccess(c, respond.UserRespond{
		ID:  userID,
		Dev: h.voteSvc.IsOwner(userID),
	})
}
