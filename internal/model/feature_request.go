package model

import "time"

// FeatureRequest 功能请求
// ID 格式为 "{作者ID}_{创建毫秒时间戳}"，作者 ID 通过解析 ID 得到；
// 外部导入的请求可能使用其他不透明格式（如 "PVTI_xxx"）
type FeatureRequest struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(64);comment:请求ID" json:"id"`
	Title     string    `gorm:"column:title;type:text;not null;comment:标题，长度上限由配置决定" json:"title"`
	Body      string    `gorm:"column:body;type:text;comment:正文" json:"body"`
	Votes     int       `gorm:"column:votes;default:0;comment:票数，可为负" json:"votes"`
	Pending   bool      `gorm:"column:pending;index;default:false;comment:是否待审核" json:"pending,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;index" json:"-"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"-"`
}

func (FeatureRequest) TableName() string {
	return "feature_requests"
}
