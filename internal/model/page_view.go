package model

import "time"

// PageView 用户页面访问计数（userSettings.<userId>.pageViews.<page>）
type PageView struct {
	UserID      string    `gorm:"column:user_id;primaryKey;type:varchar(32)"`
	Page        string    `gorm:"column:page;primaryKey;type:varchar(191);comment:点分隔的页面路径，根路径为 root"`
	Count       int       `gorm:"column:count;default:0"`
	LastVisited time.Time `gorm:"column:last_visited"`
}

func (PageView) TableName() string {
	return "user_page_views"
}
