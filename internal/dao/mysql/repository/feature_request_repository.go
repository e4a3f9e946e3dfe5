// Package repository 提供数据访问层的具体实现
// 本文件实现 FeatureRequestRepository 接口
package repository

import (
	"context"
	"errors"

	"bot_dashboard/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// featureRequestRepository FeatureRequestRepository 接口的实现
type featureRequestRepository struct {
	db *gorm.DB
}

// NewFeatureRequestRepository 创建 FeatureRequestRepository 实例
func NewFeatureRequestRepository(db *gorm.DB) FeatureRequestRepository {
	return &featureRequestRepository{db: db}
}

// FindAll 查找所有功能请求
func (r *featureRequestRepository) FindAll(ctx context.Context) ([]model.FeatureRequest, error) {
	var list []model.FeatureRequest
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&list).Error; err != nil {
		return nil, wrapDBError(err, "查询所有功能请求")
	}
	return list, nil
}

// FindByID 根据 ID 查找功能请求
func (r *featureRequestRepository) FindByID(ctx context.Context, id string) (*model.FeatureRequest, error) {
	var req model.FeatureRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapDBErrorf(err, "查询功能请求 id=%s", id)
	}
	return &req, nil
}

// Save 整体替换功能请求，主键冲突时更新全部字段
func (r *featureRequestRepository) Save(ctx context.Context, req *model.FeatureRequest) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "body", "votes", "pending", "updated_at"}),
		}).
		Create(req).Error
	return wrapDBErrorf(err, "保存功能请求 id=%s", req.ID)
}

// Delete 删除功能请求
func (r *featureRequestRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.FeatureRequest{}).Error
	return wrapDBErrorf(err, "删除功能请求 id=%s", id)
}

// IncrementVotes 使用 votes = votes + ? 原子更新，避免并发投票丢票
func (r *featureRequestRepository) IncrementVotes(ctx context.Context, id string, delta int) error {
	err := r.db.WithContext(ctx).
		Model(&model.FeatureRequest{}).
		Where("id = ?", id).
		UpdateColumn("votes", gorm.Expr("votes + ?", delta)).Error
	return wrapDBErrorf(err, "更新票数 id=%s", id)
}
