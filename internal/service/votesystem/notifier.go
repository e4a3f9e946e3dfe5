package votesystem

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"bot_dashboard/internal/infrastructure/metrics"
	"bot_dashboard/internal/model"
	"bot_dashboard/pkg/errorx"
)

const msgNoWebhook = "The backend has no webhook url configured"

// DirectMessenger 向用户发送私信
// 失败时返回 discordgo 的 *RESTError，以便识别可忽略的错误码
type DirectMessenger interface {
	SendEmbed(ctx context.Context, userID string, embed *discordgo.MessageEmbed) error
}

// Dispatcher 负责把变更通知投递到审核频道 Webhook 和作者私信
type Dispatcher struct {
	cfg      Config
	settings Settings
	client   *http.Client
	dm       DirectMessenger
}

// NewDispatcher 构造函数，client 为 nil 时使用 10 秒超时的默认客户端；dm 可为 nil
func NewDispatcher(cfg Config, settings Settings, dm DirectMessenger, client *http.Client) *Dispatcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Dispatcher{cfg: cfg, settings: settings, client: client, dm: dm}
}

// SendToWebhook 向审核频道发送单个 Embed
// 未配置 Webhook 时返回 503 错误；非 2xx 响应返回 false 而不是错误；
// 只有网络层异常才返回其他错误
func (d *Dispatcher) SendToWebhook(ctx context.Context, title, description string, color int, urlSuffix string) (bool, error) {
	if d.cfg.WebhookURL == "" {
		return false, errorx.New(http.StatusServiceUnavailable, msgNoWebhook)
	}

	websiteURL := d.cfg.WebsiteURL()
	payload := discordgo.WebhookParams{
		Username:  d.cfg.WebhookUsername,
		AvatarURL: websiteURL + "/favicon.ico",
		Embeds: []*discordgo.MessageEmbed{{
			URL:         websiteURL + "/" + d.cfg.VotingPath + urlSuffix,
			Title:       title,
			Description: description,
			Color:       color,
		}},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return false, errorx.Wrap(err, http.StatusInternalServerError, "marshal webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.WebhookURL, bytes.NewReader(data))
	if err != nil {
		return false, errorx.Wrap(err, http.StatusInternalServerError, "build webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return false, errorx.Wrap(err, http.StatusInternalServerError, "post webhook")
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

// NotifyAuthor 私信通知作者
// 作者无法解析时直接返回；用户不存在或关闭了私信时忽略错误，其余错误返回给调用方
func (d *Dispatcher) NotifyAuthor(ctx context.Context, feature model.FeatureRequest, mode Mode) error {
	userID := GetRequestAuthor(feature.ID)
	if userID == "" || d.dm == nil {
		return nil
	}

	tpl := d.settings.UserChangeNotificationEmbed[mode]
	embed := &discordgo.MessageEmbed{
		Title:       tpl.Title,
		Description: fmt.Sprintf("%s\n\n\"%s\"\n%s?q=%s", tpl.Description, feature.Title, d.cfg.VotingURL(), feature.ID),
		Color:       tpl.Color,
	}

	err := d.dm.SendEmbed(ctx, userID, embed)
	if err == nil || isUnreachableUser(err) {
		return nil
	}
	return err
}

// isUnreachableUser 未知用户（10013）或无法向该用户发送消息（50007）
func isUnreachableUser(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Message == nil {
		return false
	}
	switch restErr.Message.Code {
	case discordgo.ErrCodeUnknownUser, discordgo.ErrCodeCannotSendMessagesToThisUser:
		return true
	}
	return false
}

// FormatDesc 生成 "**标题**\n\n正文"
// 正文超过 maxVisibleBodyLength 时保留从该位置开始的内容并追加 "..."（历史行为）；
// maxVisibleBodyLength <= 0 表示不截断
func FormatDesc(title, body string, maxVisibleBodyLength int) string {
	if maxVisibleBodyLength > 0 && utf8.RuneCountInString(body) > maxVisibleBodyLength {
		body = string([]rune(body)[maxVisibleBodyLength:]) + "..."
	}
	return "**" + title + "**\n\n" + body
}

// ==================== 通知任务 ====================

// JobKind 通知任务类型
type JobKind string

const (
	JobWebhook JobKind = "webhook"
	JobAuthor  JobKind = "author"
)

// NotificationJob 可序列化的通知任务，可经由 Kafka 跨进程投递
type NotificationJob struct {
	Kind JobKind `json:"kind"`

	// Webhook
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Color       int    `json:"color,omitempty"`
	URLSuffix   string `json:"urlSuffix,omitempty"`

	// 作者私信
	Feature *model.FeatureRequest `json:"feature,omitempty"`
	Mode    Mode                  `json:"mode,omitempty"`
}

// WebhookJob 构造 Webhook 任务
func WebhookJob(title, description string, color int, urlSuffix string) NotificationJob {
	return NotificationJob{Kind: JobWebhook, Title: title, Description: description, Color: color, URLSuffix: urlSuffix}
}

// AuthorJob 构造作者私信任务
func AuthorJob(feature model.FeatureRequest, mode Mode) NotificationJob {
	return NotificationJob{Kind: JobAuthor, Feature: &feature, Mode: mode}
}

// Deliver 执行单个通知任务
func (d *Dispatcher) Deliver(ctx context.Context, job NotificationJob) error {
	switch job.Kind {
	case JobWebhook:
		ok, err := d.SendToWebhook(ctx, job.Title, job.Description, job.Color, job.URLSuffix)
		if err != nil {
			return err
		}
		if !ok {
			return errorx.Newf(http.StatusBadGateway, "webhook rejected %q", job.Title)
		}
		return nil
	case JobAuthor:
		if job.Feature == nil {
			return fmt.Errorf("author notification without feature")
		}
		return d.NotifyAuthor(ctx, *job.Feature, job.Mode)
	default:
		return fmt.Errorf("unknown notification kind %q", job.Kind)
	}
}

// Handle 消费一条序列化的通知任务，作为后台任务的错误边界：
// panic 与投递失败都只记录日志和指标，不再向上抛出
func (d *Dispatcher) Handle(ctx context.Context, payload []byte) (err error) {
	var job NotificationJob
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
			zap.L().Error("notification delivery panic", zap.Any("recover", rec), zap.String("kind", string(job.Kind)))
		}
		if err != nil && errorx.GetCode(err) != http.StatusServiceUnavailable {
			zap.L().Error("notification delivery failed", zap.String("kind", string(job.Kind)), zap.Error(err))
		}
		metrics.ObserveNotification(string(job.Kind), err)
		err = nil
	}()

	if err = json.Unmarshal(payload, &job); err != nil {
		return errorx.Wrap(err, http.StatusBadRequest, "decode notification job")
	}
	return d.Deliver(ctx, job)
}
