// Package repository 定义数据访问层接口和聚合结构
// 外部文档存储的键路径（website.requests / userSettings / botSettings.blacklist）
// 在这里落到 MySQL 表上，Service 层只依赖这些接口
package repository

import (
	"context"
	"time"

	"bot_dashboard/internal/model"

	"gorm.io/gorm"
)

// ==================== Repository 接口定义 ====================

// FeatureRequestRepository 功能请求数据访问接口（website.requests.<id>）
type FeatureRequestRepository interface {
	// FindAll 查找所有功能请求，按创建时间排序
	FindAll(ctx context.Context) ([]model.FeatureRequest, error)
	// FindByID 根据 ID 查找，不存在时返回 nil, nil
	FindByID(ctx context.Context, id string) (*model.FeatureRequest, error)
	// Save 整体替换（不存在则插入）
	Save(ctx context.Context, req *model.FeatureRequest) error
	// Delete 删除功能请求
	Delete(ctx context.Context, id string) error
	// IncrementVotes 原子地调整票数
	IncrementVotes(ctx context.Context, id string, delta int) error
}

// UserSettingRepository 用户附加状态数据访问接口（userSettings.<userId>）
type UserSettingRepository interface {
	// FindByUserID 查找用户设置，不存在时返回 nil, nil
	FindByUserID(ctx context.Context, userID string) (*model.UserSetting, error)
	// UpsertLastVoted 写入最近投票时间
	UpsertLastVoted(ctx context.Context, userID string, at time.Time) error
}

// BlacklistRepository 全局黑名单数据访问接口（botSettings.blacklist）
type BlacklistRepository interface {
	// Exists 判断用户是否在黑名单中
	Exists(ctx context.Context, userID string) (bool, error)
}

// PageViewRepository 页面访问计数数据访问接口（userSettings.<userId>.pageViews）
type PageViewRepository interface {
	// Find 查找访问记录，不存在时返回 nil, nil
	Find(ctx context.Context, userID, page string) (*model.PageView, error)
	// Save 写入访问记录
	Save(ctx context.Context, view *model.PageView) error
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db             *gorm.DB                 // GORM 数据库实例
	FeatureRequest FeatureRequestRepository // 功能请求 Repository
	UserSetting    UserSettingRepository    // 用户设置 Repository
	Blacklist      BlacklistRepository      // 黑名单 Repository
	PageView       PageViewRepository       // 页面访问 Repository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:             db,
		FeatureRequest: NewFeatureRequestRepository(db),
		UserSetting:    NewUserSettingRepository(db),
		Blacklist:      NewBlacklistRepository(db),
		PageView:       NewPageViewRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚；
// 未绑定数据库的聚合（由内存实现直接组装）在当前实例上执行 fn
func (r *Repositories) Transaction(ctx context.Context, fn func(txRepos *Repositories) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
