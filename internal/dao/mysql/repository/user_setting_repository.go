// Package repository 提供数据访问层的具体实现
// 本文件实现 UserSettingRepository 接口
package repository

import (
	"context"
	"errors"
	"time"

	"bot_dashboard/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userSettingRepository struct {
	db *gorm.DB
}

// NewUserSettingRepository 创建 UserSettingRepository 实例
func NewUserSettingRepository(db *gorm.DB) UserSettingRepository {
	return &userSettingRepository{db: db}
}

// FindByUserID 查找用户设置
func (r *userSettingRepository) FindByUserID(ctx context.Context, userID string) (*model.UserSetting, error) {
	var setting model.UserSetting
	if err := r.db.WithContext(ctx).First(&setting, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapDBErrorf(err, "查询用户设置 user_id=%s", userID)
	}
	return &setting, nil
}

// UpsertLastVoted 写入最近投票时间，用户设置不存在时创建
func (r *userSettingRepository) UpsertLastVoted(ctx context.Context, userID string, at time.Time) error {
	setting := model.UserSetting{UserID: userID, LastVoted: &at}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_voted", "updated_at"}),
		}).
		Create(&setting).Error
	return wrapDBErrorf(err, "更新最近投票时间 user_id=%s", userID)
}
