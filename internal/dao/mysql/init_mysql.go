// Package mysql 负责建立 MySQL 连接、自动迁移表结构、初始化 Repository 层
package mysql

import (
	"fmt"

	"bot_dashboard/internal/config"
	"bot_dashboard/internal/dao/mysql/repository"
	"bot_dashboard/internal/model"

	mysqldriver "gorm.io/driver/mysql" // GORM MySQL 驱动
	"gorm.io/gorm"
)

// Init 初始化数据库连接并返回 Repository 层实例
// 执行步骤：
//  1. 构建 DSN 连接字符串
//  2. 使用 GORM 建立数据库连接
//  3. 执行 AutoMigrate 自动迁移表结构
//  4. 创建并返回 Repository 实例
func Init(conf *config.MysqlConfig) (*repository.Repositories, error) {
	// 格式：user:password@tcp(host:port)/database?params
	// loc=Local：按服务器本地时区读写时间，与自然周计算保持一致
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		conf.User,
		conf.Password,
		conf.Host,
		conf.Port,
		conf.DatabaseName,
	)

	db, err := gorm.Open(mysqldriver.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	// 如果表不存在则创建，不会删除已有字段或数据
	err = db.AutoMigrate(
		&model.FeatureRequest{}, // website.requests
		&model.UserSetting{},    // userSettings
		&model.BlacklistEntry{}, // botSettings.blacklist
		&model.PageView{},       // userSettings.<id>.pageViews
	)
	if err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return repository.NewRepositories(db), nil
}
