package votesystem

import (
	"fmt"
	"strconv"
	"strings"

	"bot_dashboard/internal/config"
)

// Mode 作者通知类型，对应 userChangeNotificationEmbed 的键
type Mode string

const (
	ModeApproved Mode = "approved"
	ModeDenied   Mode = "denied"
	ModeDeleted  Mode = "deleted"
	ModeUpdated  Mode = "updated"
)

// 常用 Embed 颜色
const (
	ColorWhite   = 0xFFFFFF
	ColorBlue    = 0x3498DB
	ColorRed     = 0xED4245
	ColorOrange  = 0xE67E22
	ColorBlurple = 0x5865F2
)

// namedColors 配置中可用的颜色名（不区分大小写）
var namedColors = map[string]int{
	"default":         0x000000,
	"white":           ColorWhite,
	"aqua":            0x1ABC9C,
	"green":           0x57F287,
	"blue":            ColorBlue,
	"yellow":          0xFEE75C,
	"purple":          0x9B59B6,
	"gold":            0xF1C40F,
	"orange":          ColorOrange,
	"red":             ColorRed,
	"grey":            0x95A5A6,
	"navy":            0x34495E,
	"fuchsia":         0xEB459E,
	"blurple":         ColorBlurple,
	"greyple":         0x99AAB5,
	"darkbutnotblack": 0x2C2F33,
	"notquiteblack":   0x23272A,
}

// Embed 单个通知模板
type Embed struct {
	Title       string
	Description string
	Color       int
}

// Settings 内容策略与通知模板，构造后只读
type Settings struct {
	RequireTitle   bool
	MinTitleLength int
	MaxTitleLength int // <= 0 表示不限制
	RequireBody    bool
	MinBodyLength  int
	MaxBodyLength  int // <= 0 表示不限制

	MaxPendingFeatureRequests   int
	WebhookMaxVisibleBodyLength int // <= 0 表示不截断

	UserChangeNotificationEmbed map[Mode]Embed
}

// Config 部署相关配置
type Config struct {
	Domain          string
	Port            int
	VotingPath      string
	WebhookURL      string
	WebhookUsername string
	OwnerIDs        []string
}

// DefaultSettings 返回默认设置
func DefaultSettings() Settings {
	return Settings{
		RequireTitle:                true,
		MinTitleLength:              0,
		MaxTitleLength:              140,
		RequireBody:                 false,
		MinBodyLength:               0,
		MaxBodyLength:               4000,
		MaxPendingFeatureRequests:   5,
		WebhookMaxVisibleBodyLength: 2000,
		UserChangeNotificationEmbed: map[Mode]Embed{
			ModeApproved: {Title: "New Approved Feature Request", Color: ColorBlue},
			ModeDenied:   {Title: "Feature Request has been denied", Color: ColorRed},
			ModeDeleted:  {Title: "Feature Request has been deleted", Color: ColorRed},
			ModeUpdated: {
				Title:       "Feature Requests have been edited",
				Description: "The following feature request(s) have been edited by a developer:",
				Color:       ColorOrange,
			},
		},
	}
}

// NewSettings 在默认设置之上逐字段应用配置
func NewSettings(conf config.VoteSettingsConfig) (Settings, error) {
	s := DefaultSettings()

	setBool(&s.RequireTitle, conf.RequireTitle)
	setInt(&s.MinTitleLength, conf.MinTitleLength)
	setInt(&s.MaxTitleLength, conf.MaxTitleLength)
	setBool(&s.RequireBody, conf.RequireBody)
	setInt(&s.MinBodyLength, conf.MinBodyLength)
	setInt(&s.MaxBodyLength, conf.MaxBodyLength)
	setInt(&s.MaxPendingFeatureRequests, conf.MaxPendingFeatureRequests)
	setInt(&s.WebhookMaxVisibleBodyLength, conf.WebhookMaxVisibleBodyLength)

	for key, override := range conf.UserChangeNotificationEmbed {
		mode := Mode(key)
		embed, ok := s.UserChangeNotificationEmbed[mode]
		if !ok {
			return s, fmt.Errorf("unknown notification embed %q", key)
		}
		if override.Title != nil {
			embed.Title = *override.Title
		}
		if override.Description != nil {
			embed.Description = *override.Description
		}
		if override.Color != nil {
			color, err := ResolveColor(*override.Color)
			if err != nil {
				return s, fmt.Errorf("notification embed %q: %w", key, err)
			}
			embed.Color = color
		}
		s.UserChangeNotificationEmbed[mode] = embed
	}
	return s, nil
}

// NewConfig 从部署配置构建
func NewConfig(conf config.VoteConfig) Config {
	votingPath := strings.Trim(conf.VotingPath, "/")
	if votingPath == "" {
		votingPath = "vote"
	}
	return Config{
		Domain:          strings.TrimRight(conf.Domain, "/"),
		Port:            conf.Port,
		VotingPath:      votingPath,
		WebhookURL:      conf.WebhookURL,
		WebhookUsername: conf.WebhookUsername,
		OwnerIDs:        conf.OwnerIDs,
	}
}

// WebsiteURL 站点根地址，端口为 0 时不拼接
func (c Config) WebsiteURL() string {
	if c.Port != 0 {
		return c.Domain + ":" + strconv.Itoa(c.Port)
	}
	return c.Domain
}

// VotingURL 投票页面地址
func (c Config) VotingURL() string {
	return c.WebsiteURL() + "/" + c.VotingPath
}

// IsOwner 判断用户是否为配置的管理员
func (c Config) IsOwner(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range c.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ResolveColor 解析颜色：颜色名、"#RRGGBB" 或数字（十进制 / 0x 前缀）
func ResolveColor(value string) (int, error) {
	value = strings.TrimSpace(value)
	if c, ok := namedColors[strings.ToLower(value)]; ok {
		return c, nil
	}

	var (
		n   int64
		err error
	)
	if strings.HasPrefix(value, "#") {
		n, err = strconv.ParseInt(value[1:], 16, 64)
	} else {
		n, err = strconv.ParseInt(value, 0, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid color %q", value)
	}
	if n < 0 || n > 0xFFFFFF {
		return 0, fmt.Errorf("color %q out of range", value)
	}
	return int(n), nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
