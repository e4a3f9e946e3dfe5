// Package repository 提供数据访问层的具体实现
// 本文件实现 BlacklistRepository 接口
package repository

import (
	"context"

	"bot_dashboard/internal/model"

	"gorm.io/gorm"
)

type blacklistRepository struct {
	db *gorm.DB
}

// NewBlacklistRepository 创建 BlacklistRepository 实例
func NewBlacklistRepository(db *gorm.DB) BlacklistRepository {
	return &blacklistRepository{db: db}
}

// Exists 判断用户是否在黑名单中
func (r *blacklistRepository) Exists(ctx context.Context, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.BlacklistEntry{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, wrapDBErrorf(err, "查询黑名单 user_id=%s", userID)
	}
	return count > 0, nil
}
