package model

import "time"

// BlacklistEntry 全局黑名单（botSettings.blacklist）
type BlacklistEntry struct {
	UserID    string    `gorm:"column:user_id;primaryKey;type:varchar(32);comment:Discord 用户ID"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (BlacklistEntry) TableName() string {
	return "bot_blacklist"
}
