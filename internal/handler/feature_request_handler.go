// Package handler 提供 HTTP 请求处理器
// 本文件处理功能请求投票相关的 API 请求
package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"bot_dashboard/internal/dto/request"
	"bot_dashboard/internal/dto/respond"
	"bot_dashboard/internal/infrastructure/middleware"
	"bot_dashboard/internal/service"
	"bot_dashboard/internal/service/votesystem"
	"bot_dashboard/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// FeatureRequestHandler 功能请求处理器
type FeatureRequestHandler struct {
	voteSvc service.VoteService
}

// NewFeatureRequestHandler 创建功能请求处理器实例
func NewFeatureRequestHandler(voteSvc service.VoteService) *FeatureRequestHandler {
	return &FeatureRequestHandler{voteSvc: voteSvc}
}

// List 分页查询
// GET /vote/list?amount=&offset=&filter=&includePending=
// 响应: votesystem.Page
func (h *FeatureRequestHandler) List(c *gin.Context) {
	var req request.ListFeatureRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	page, err := h.voteSvc.GetMany(c.Request.Context(), req.Amount, req.Offset, req.Filter, req.IncludePending, middleware.GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, page)
}

// Get 读取单个功能请求
// GET /vote/get?id=
// 待审核的请求只对管理员和作者可见，其他人视为不存在
func (h *FeatureRequestHandler) Get(c *gin.Context) {
	var req request.GetFeatureRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	feature, err := h.voteSvc.Get(c.Request.Context(), req.ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	userID := middleware.GetUserID(c)
	if feature == nil || (feature.Pending && !h.voteSvc.IsOwner(userID) && votesystem.GetRequestAuthor(feature.ID) != userID) {
		HandleError(c, errorx.New(http.StatusBadRequest, "Unknown featureReq ID."))
		return
	}
	HandleSuccess(c, feature)
}

// Add 提交功能请求
// POST /vote/add
// 请求体: request.AddFeatureRequest
func (h *FeatureRequestHandler) Add(c *gin.Context) {
	var req request.AddFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	feature, err := h.voteSvc.Add(c.Request.Context(), req.Title, req.Body, middleware.GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, feature)
}

// Approve 审核通过
// POST /vote/approve
// 请求体: request.FeatureIDRequest
func (h *FeatureRequestHandler) Approve(c *gin.Context) {
	var req request.FeatureIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	feature, err := h.voteSvc.Approve(c.Request.Context(), req.FeatureID, middleware.GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, feature)
}

// Update 批量编辑
// POST /vote/update
// 请求体: request.FeatureEditRequest 或其数组
func (h *FeatureRequestHandler) Update(c *gin.Context) {
	edits, err := bindEdits(c)
	if err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.voteSvc.Update(c.Request.Context(), edits, middleware.GetUserID(c)); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.SuccessRespond{Success: true})
}

// Delete 删除功能请求
// POST /vote/delete
// 请求体: request.FeatureIDRequest
func (h *FeatureRequestHandler) Delete(c *gin.Context) {
	var req request.FeatureIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.voteSvc.Delete(c.Request.Context(), req.FeatureID, middleware.GetUserID(c)); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.SuccessRespond{Success: true})
}

// AddVote 投票
// POST /vote/addvote
// 请求体: request.VoteRequest
func (h *FeatureRequestHandler) AddVote(c *gin.Context) {
	var req request.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	feature, err := h.voteSvc.AddVote(c.Request.Context(), req.FeatureID, middleware.GetUserID(c), req.Type)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, feature)
}

// bindEdits 请求体可以是单个对象，也可以是数组
func bindEdits(c *gin.Context) ([]votesystem.FeatureEdit, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)

	var reqs []request.FeatureEditRequest
	if len(raw) > 0 && raw[0] == '[' {
		err = json.Unmarshal(raw, &reqs)
	} else {
		var single request.FeatureEditRequest
		err = json.Unmarshal(raw, &single)
		reqs = append(reqs, single)
	}
	if err != nil {
		return nil, err
	}

	edits := make([]votesystem.FeatureEdit, 0, len(reqs))
	for i := range reqs {
		if err := binding.Validator.ValidateStruct(&reqs[i]); err != nil {
			return nil, err
		}
		edits = append(edits, votesystem.FeatureEdit{
			ID:      reqs[i].ID,
			Title:   reqs[i].Title,
			Body:    reqs[i].Body,
			Pending: reqs[i].Pending,
		})
	}
	return edits, nil
}
