// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找；敏感信息可通过 .env / 环境变量覆盖
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml" // TOML 配置文件解析库
	"github.com/joho/godotenv"   // .env 文件加载
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName     string   `toml:"appName"`     // 应用名称，用于日志标识等
	Host        string   `toml:"host"`        // 服务器监听地址，如 "0.0.0.0"
	Port        int      `toml:"port"`        // 服务器监听端口，如 8000
	Mode        string   `toml:"mode"`        // 运行模式：dev / release
	SSLRedirect bool     `toml:"sslRedirect"` // 是否启用 HTTP -> HTTPS 重定向（由 Nginx 处理 SSL 时关闭）
	CorsOrigins []string `toml:"corsOrigins"` // 允许跨域的来源，留空表示 "*"
}

// MysqlConfig MySQL 数据库连接配置
type MysqlConfig struct {
	Host         string `toml:"host"`         // MySQL 服务器地址
	Port         int    `toml:"port"`         // MySQL 端口，默认 3306
	User         string `toml:"user"`         // 数据库用户名
	Password     string `toml:"password"`     // 数据库密码
	DatabaseName string `toml:"databaseName"` // 数据库名称
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host     string `toml:"host"`     // Redis 服务器地址
	Port     int    `toml:"port"`     // Redis 端口，默认 6379
	Password string `toml:"password"` // Redis 密码，无密码留空
	Db       int    `toml:"db"`       // Redis 数据库编号，默认 0
	Workers  int    `toml:"workers"`  // 异步缓存任务 Worker 数
	Buffer   int    `toml:"buffer"`   // 异步缓存任务通道缓冲区大小
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// JWTConfig JWT 认证配置
// Token 由外部 OAuth 登录流程使用同一密钥签发，本服务只负责校验
type JWTConfig struct {
	Secret            string `toml:"secret"`            // JWT 签名密钥，建议 32 字符以上
	AccessTokenExpiry int    `toml:"accessTokenExpiry"` // Access Token 有效期（分钟）
}

// DiscordConfig Discord Bot 配置，用于给作者发送私信
type DiscordConfig struct {
	BotToken string `toml:"botToken"` // Bot Token，留空则不发送私信
}

// NotifyConfig 通知队列配置
type NotifyConfig struct {
	Mode       string        `toml:"mode"`       // 队列模式："channel" 或 "kafka"
	Workers    int           `toml:"workers"`    // channel 模式下的 Worker 数
	BufferSize int           `toml:"bufferSize"` // channel 模式下的缓冲区大小
	HostPort   string        `toml:"hostPort"`   // Kafka 服务器地址，如 "localhost:9092"
	Topic      string        `toml:"topic"`      // 通知主题
	GroupID    string        `toml:"groupId"`    // 消费者组
	Timeout    time.Duration `toml:"timeout"`    // 超时时间（秒）
}

// EmbedConfig 单个通知模板
type EmbedConfig struct {
	Title       *string `toml:"title"`
	Description *string `toml:"description"`
	Color       *string `toml:"color"` // 颜色名（如 "Blue"）、"#RRGGBB" 或十进制数字
}

// VoteConfig 投票系统部署配置
type VoteConfig struct {
	Domain          string   `toml:"domain"`          // 站点根地址，如 "https://example.com"
	Port            int      `toml:"port"`            // 非 0 时拼接到链接中
	VotingPath      string   `toml:"votingPath"`      // 投票页面路径片段，如 "vote"
	WebhookURL      string   `toml:"webhookUrl"`      // 审核频道 Webhook，留空则不推送
	WebhookUsername string   `toml:"webhookUsername"` // Webhook 显示名称
	OwnerIDs        []string `toml:"ownerIds"`        // 管理员（开发者）用户 ID
}

// VoteSettingsConfig 投票系统内容策略，未配置的字段使用默认值
type VoteSettingsConfig struct {
	RequireTitle                *bool                  `toml:"requireTitle"`
	MinTitleLength              *int                   `toml:"minTitleLength"`
	MaxTitleLength              *int                   `toml:"maxTitleLength"`
	RequireBody                 *bool                  `toml:"requireBody"`
	MinBodyLength               *int                   `toml:"minBodyLength"`
	MaxBodyLength               *int                   `toml:"maxBodyLength"`
	MaxPendingFeatureRequests   *int                   `toml:"maxPendingFeatureRequests"`
	WebhookMaxVisibleBodyLength *int                   `toml:"webhookMaxVisibleBodyLength"`
	UserChangeNotificationEmbed map[string]EmbedConfig `toml:"userChangeNotificationEmbed"` // approved / denied / deleted / updated
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig         `toml:"mainConfig"`    // 主配置
	MysqlConfig        `toml:"mysqlConfig"`   // MySQL 配置
	RedisConfig        `toml:"redisConfig"`   // Redis 配置
	LogConfig          `toml:"logConfig"`     // 日志配置
	JWTConfig          `toml:"jwtConfig"`     // JWT 配置
	DiscordConfig      `toml:"discordConfig"` // Discord 配置
	NotifyConfig       `toml:"notifyConfig"`  // 通知队列配置
	VoteConfig         `toml:"voteConfig"`    // 投票系统部署配置
	VoteSettingsConfig `toml:"voteSettings"`  // 投票系统内容策略
}

// config 全局配置单例，延迟加载
var config *Config

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
func LoadConfig() error {
	// 候选配置文件路径（优先加载本地配置）
	paths := []string{
		"configs/config_local.toml",       // 本地开发配置（优先）
		"configs/config.toml",             // 默认配置
		"../../configs/config_local.toml", // 从子目录运行时的路径
		"../../configs/config.toml",       // 从子目录运行时的路径
	}

	for _, path := range paths {
		if _, err := toml.DecodeFile(path, config); err == nil {
			return nil
		}
	}

	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// Decode 从 TOML 文本解析配置，主要用于测试
func Decode(data string) (*Config, error) {
	conf := new(Config)
	if _, err := toml.Decode(data, conf); err != nil {
		return nil, err
	}
	return conf, nil
}

// applyEnv 用环境变量覆盖敏感配置
// .env 文件不存在时忽略
func applyEnv(conf *Config) {
	_ = godotenv.Load()

	overrides := map[string]*string{
		"DISCORD_BOT_TOKEN": &conf.DiscordConfig.BotToken,
		"VOTE_WEBHOOK_URL":  &conf.VoteConfig.WebhookURL,
		"JWT_SECRET":        &conf.JWTConfig.Secret,
		"MYSQL_PASSWORD":    &conf.MysqlConfig.Password,
		"REDIS_PASSWORD":    &conf.RedisConfig.Password,
	}
	for key, target := range overrides {
		if v, ok := os.LookupEnv(key); ok {
			*target = strings.TrimSpace(v)
		}
	}
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件
func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig() // 忽略加载错误，使用默认值
		applyEnv(config)
	}
	return config
}
