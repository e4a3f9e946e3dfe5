// Package repository 提供数据访问层的具体实现
// 本文件实现 PageViewRepository 接口
package repository

import (
	"context"
	"errors"

	"bot_dashboard/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type pageViewRepository struct {
	db *gorm.DB
}

// NewPageViewRepository 创建 PageViewRepository 实例
func NewPageViewRepository(db *gorm.DB) PageViewRepository {
	return &pageViewRepository{db: db}
}

// Find 查找访问记录
func (r *pageViewRepository) Find(ctx context.Context, userID, page string) (*model.PageView, error) {
	var view model.PageView
	err := r.db.WithContext(ctx).First(&view, "user_id = ? AND page = ?", userID, page).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapDBErrorf(err, "查询页面访问 user_id=%s page=%s", userID, page)
	}
	return &view, nil
}

// Save 写入访问记录
func (r *pageViewRepository) Save(ctx context.Context, view *model.PageView) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "page"}},
			DoUpdates: clause.AssignmentColumns([]string{"count", "last_visited"}),
		}).
		Create(view).Error
	return wrapDBErrorf(err, "保存页面访问 user_id=%s page=%s", view.UserID, view.Page)
}
