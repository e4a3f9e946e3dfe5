// Package service 定义业务层接口
// Handler 层只依赖这里的接口，便于测试时替换实现
package service

import (
	"context"

	"bot_dashboard/internal/model"
	"bot_dashboard/internal/service/votesystem"
)

// VoteService 功能请求投票业务接口
type VoteService interface {
	// IsOwner 是否为管理员
	IsOwner(userID string) bool
	// Get 读取单个功能请求，不存在时返回 nil, nil
	Get(ctx context.Context, id string) (*model.FeatureRequest, error)
	// GetMany 过滤并分页
	GetMany(ctx context.Context, amount, offset int, filter string, includePending bool, userID string) (*votesystem.Page, error)
	// Add 提交功能请求
	Add(ctx context.Context, title, body, userID string) (*model.FeatureRequest, error)
	// Approve 审核通过
	Approve(ctx context.Context, featureID, userID string) (*model.FeatureRequest, error)
	// Update 批量编辑
	Update(ctx context.Context, edits []votesystem.FeatureEdit, userID string) error
	// Delete 删除
	Delete(ctx context.Context, featureID, userID string) error
	// AddVote 投票
	AddVote(ctx context.Context, featureID, userID, voteType string) (*model.FeatureRequest, error)
}

// PageViewService 页面访问计数接口
type PageViewService interface {
	Track(ctx context.Context, userID, path string) (bool, error)
}
