package model

import "time"

// UserSetting 用户级附加状态
// 对应 userSettings.<userId>.lastVoted / featureRequestAutoApprove
type UserSetting struct {
	UserID                    string     `gorm:"column:user_id;primaryKey;type:varchar(32);comment:Discord 用户ID"`
	LastVoted                 *time.Time `gorm:"column:last_voted;comment:最近一次成功投票时间"`
	FeatureRequestAutoApprove bool       `gorm:"column:feature_request_auto_approve;default:false;comment:提交免审核"`
	UpdatedAt                 time.Time  `gorm:"column:updated_at"`
}

func (UserSetting) TableName() string {
	return "user_settings"
}
