// Package votesystem 实现功能请求投票系统
// 提交、审核、编辑、删除、投票，以及对应的 Webhook / 私信通知
package votesystem

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"bot_dashboard/internal/infrastructure/metrics"
	"bot_dashboard/internal/model"
	"bot_dashboard/pkg/errorx"
	"bot_dashboard/pkg/util/sanitize"
)

// 实时事件类型
const (
	EventCreated  = "created"
	EventApproved = "approved"
	EventUpdated  = "updated"
	EventDeleted  = "deleted"
	EventVoted    = "voted"
)

const (
	msgUnknownFeatureRequest = "Unknown feature request ID."
	msgAlreadyApproved       = "This feature request is already approved."
	msgInvalidVoteType       = `Invalid vote type. Use "up" or "down"`
	msgVoteOncePerWeek       = "You can only vote once per week."
	msgSaveFailed            = "Failed to save feature request."
)

// EventPublisher 广播公开（非待审核）功能请求的变更
type EventPublisher interface {
	PublishFeatureEvent(eventType string, feature model.FeatureRequest)
}

// Page getMany 的返回值
type Page struct {
	Cards         []model.FeatureRequest `json:"cards"`
	MoreAvailable bool                   `json:"moreAvailable"`
}

// FeatureEdit 批量编辑中的单项，Pending 为 nil 时保持不变
type FeatureEdit struct {
	ID      string
	Title   string
	Body    string
	Pending *bool
}

// Service 功能请求生命周期引擎
// 不持有功能请求的内存副本，每次操作都重新读取存储
type Service struct {
	store    Store
	cfg      Config
	settings Settings
	queue    JobQueue
	events   EventPublisher
	sanitize func(string) string
	now      func() time.Time

	// 同一用户的"每周一票"检查与写入串行化
	voteLocks keyedMutex
}

// Option 可选配置
type Option func(*Service)

// WithEventPublisher 设置实时事件广播
func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

// WithSanitizer 替换 HTML 清理函数
func WithSanitizer(fn func(string) string) Option {
	return func(s *Service) { s.sanitize = fn }
}

// WithClock 替换时间源
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService 构造函数，注入所有依赖
func NewService(store Store, cfg Config, settings Settings, queue JobQueue, opts ...Option) *Service {
	s := &Service{
		store:    store,
		cfg:      cfg,
		settings: settings,
		queue:    queue,
		sanitize: sanitize.Text,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsOwner 判断用户是否为管理员
func (s *Service) IsOwner(userID string) bool {
	return s.cfg.IsOwner(userID)
}

// Get 读取单个功能请求，不存在时返回 nil, nil
func (s *Service) Get(ctx context.Context, id string) (*model.FeatureRequest, error) {
	return s.store.Get(ctx, id)
}

// GetMany 过滤并分页
// 只有管理员且 includePending 为 true 时才返回待审核的请求；
// filter 对标题、正文、ID 做区分大小写的子串匹配；
// amount 为 0 时返回 offset 之后的全部结果，此时 moreAvailable 恒为 false
func (s *Service) GetMany(ctx context.Context, amount, offset int, filter string, includePending bool, userID string) (*Page, error) {
	all, err := s.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	if amount < 0 {
		amount = 0
	}
	if offset < 0 {
		offset = 0
	}

	showPending := includePending && s.cfg.IsOwner(userID)
	cards := make([]model.FeatureRequest, 0, len(all))
	for _, f := range all {
		if f.Pending && !showPending {
			continue
		}
		if filter != "" && !strings.Contains(f.Title, filter) && !strings.Contains(f.Body, filter) && !strings.Contains(f.ID, filter) {
			continue
		}
		cards = append(cards, f)
	}

	if offset > len(cards) {
		offset = len(cards)
	}
	if amount == 0 {
		return &Page{Cards: cards[offset:], MoreAvailable: false}, nil
	}
	end := min(offset+amount, len(cards))
	return &Page{Cards: cards[offset:end], MoreAvailable: len(cards) > offset+amount}, nil
}

// Add 提交新的功能请求
// 开启了免审核的用户直接发布，否则进入待审核并受数量上限约束
func (s *Service) Add(ctx context.Context, title, body, userID string) (feature *model.FeatureRequest, err error) {
	defer func() { metrics.ObserveOperation("add", err) }()

	if _, err = s.validate(ctx, userID, Requirement{}, nil); err != nil {
		return nil, err
	}

	title = s.clean(title)
	body = s.clean(body)
	if err = ValidateContent(&s.settings, title, body); err != nil {
		return nil, err
	}

	autoApprove, err := s.store.AutoApprove(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !autoApprove {
		all, err := s.store.FetchAll(ctx)
		if err != nil {
			return nil, err
		}
		count := 0
		for _, f := range all {
			if GetRequestAuthor(f.ID) == userID {
				count++
			}
		}
		if count >= s.settings.MaxPendingFeatureRequests {
			return nil, errorx.Newf(http.StatusForbidden, "You may only have up to %d pending feature requests", s.settings.MaxPendingFeatureRequests)
		}
	}

	feature = &model.FeatureRequest{
		ID:      fmt.Sprintf("%s_%d", userID, s.now().UnixMilli()),
		Title:   title,
		Body:    body,
		Votes:   0,
		Pending: !autoApprove,
	}
	if err = s.store.Save(ctx, feature); err != nil {
		return nil, err
	}

	suffix := "?q=" + feature.ID
	if autoApprove {
		s.queue.Enqueue(ctx, WebhookJob("New Approved Feature Request",
			FormatDesc(title, body, s.settings.WebhookMaxVisibleBodyLength), ColorBlue, suffix))
		s.publish(EventCreated, *feature)
	} else {
		s.queue.Enqueue(ctx, WebhookJob("New Pending Feature Request", "", ColorBlue, suffix))
	}

	zap.L().Info("feature request added", zap.String("id", feature.ID), zap.Bool("pending", feature.Pending))
	return feature, nil
}

// Approve 审核通过，仅管理员可用；重复审核返回 409
func (s *Service) Approve(ctx context.Context, featureID, userID string) (feature *model.FeatureRequest, err error) {
	defer func() { metrics.ObserveOperation("approve", err) }()

	feature, err = s.validate(ctx, userID, Requirement{RequireOwner: true}, &featureID)
	if err != nil {
		return nil, err
	}
	if !feature.Pending {
		return nil, errorx.New(http.StatusConflict, msgAlreadyApproved)
	}

	feature.Pending = false
	if err = s.store.Save(ctx, feature); err != nil {
		return nil, err
	}

	tpl := s.settings.UserChangeNotificationEmbed[ModeApproved]
	s.queue.Enqueue(ctx, WebhookJob(tpl.Title,
		FormatDesc(feature.Title, feature.Body, s.settings.WebhookMaxVisibleBodyLength), tpl.Color, "?q="+featureID))
	if GetRequestAuthor(featureID) != userID {
		s.queue.Enqueue(ctx, AuthorJob(*feature, ModeApproved))
	}
	s.publish(EventApproved, *feature)

	zap.L().Info("feature request approved", zap.String("id", featureID), zap.String("by", userID))
	return feature, nil
}

// Update 批量编辑，仅管理员可用
// 遇到第一个未知 ID 或内容不合法的条目即停止处理后续条目；
// 已通过校验的条目并发写入，单条写入失败不影响其他条目；
// 只要有任意条目失败，整体返回 *errorx.BatchError（已写入的条目不会回滚）
func (s *Service) Update(ctx context.Context, edits []FeatureEdit, userID string) (err error) {
	defer func() { metrics.ObserveOperation("update", err) }()

	if _, err = s.validate(ctx, userID, Requirement{RequireOwner: true}, nil); err != nil {
		return err
	}

	var (
		itemErrors []errorx.ItemError
		writes     []*model.FeatureRequest
	)
	for _, edit := range edits {
		existing, err := s.store.Get(ctx, edit.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			itemErrors = append(itemErrors, errorx.ItemError{ID: edit.ID, Error: msgUnknownFeatureRequest})
			break
		}

		title := s.clean(edit.Title)
		body := s.clean(edit.Body)
		if verr := ValidateContent(&s.settings, title, body); verr != nil {
			itemErrors = append(itemErrors, errorx.ItemError{ID: edit.ID, Error: errorMessage(verr)})
			break
		}

		data := *existing
		data.Title = title
		data.Body = body
		if edit.Pending != nil {
			data.Pending = *edit.Pending
		}
		writes = append(writes, &data)
	}

	results := make([]error, len(writes))
	var wg sync.WaitGroup
	for i, data := range writes {
		i, data := i, data
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.store.Save(ctx, data)
		}()
	}
	wg.Wait()

	var links strings.Builder
	for i, data := range writes {
		if results[i] != nil {
			zap.L().Error("save edited feature request", zap.String("id", data.ID), zap.Error(results[i]))
			itemErrors = append(itemErrors, errorx.ItemError{ID: data.ID, Error: msgSaveFailed})
			continue
		}
		fmt.Fprintf(&links, "\n- [%s](%s?q=%s)", data.ID, s.cfg.VotingURL(), data.ID)
		if GetRequestAuthor(data.ID) != userID {
			s.queue.Enqueue(ctx, AuthorJob(*data, ModeUpdated))
		}
		if !data.Pending {
			s.publish(EventUpdated, *data)
		}
	}

	tpl := s.settings.UserChangeNotificationEmbed[ModeUpdated]
	s.queue.Enqueue(ctx, WebhookJob(tpl.Title, tpl.Description+"\n"+links.String(), tpl.Color, ""))

	if len(itemErrors) > 0 {
		return &errorx.BatchError{Code: http.StatusBadRequest, Errors: itemErrors}
	}
	return nil
}

// Delete 删除功能请求，作者本人与管理员均可操作
func (s *Service) Delete(ctx context.Context, featureID, userID string) (err error) {
	defer func() { metrics.ObserveOperation("delete", err) }()

	author := GetRequestAuthor(featureID)
	feature, err := s.validate(ctx, userID, Requirement{RequireOwner: true, AllowUser: author}, &featureID)
	if err != nil {
		return err
	}

	if err = s.store.Delete(ctx, featureID); err != nil {
		return err
	}

	mode := ModeDeleted
	if feature.Pending {
		mode = ModeDenied
	}
	actor := "a dev"
	if author == userID {
		actor = "the author"
	}
	tpl := s.settings.UserChangeNotificationEmbed[mode]
	s.queue.Enqueue(ctx, WebhookJob(tpl.Title+" by "+actor,
		FormatDesc(feature.Title, feature.Body, s.settings.WebhookMaxVisibleBodyLength), tpl.Color, ""))
	if author != userID {
		s.queue.Enqueue(ctx, AuthorJob(*feature, mode))
	}
	if !feature.Pending {
		s.publish(EventDeleted, *feature)
	}

	zap.L().Info("feature request deleted", zap.String("id", featureID), zap.String("by", userID))
	return nil
}

// AddVote 投票，每个用户每个自然周只能投一次；voteType 为空时视为 "up"
func (s *Service) AddVote(ctx context.Context, featureID, userID, voteType string) (feature *model.FeatureRequest, err error) {
	defer func() { metrics.ObserveOperation("vote", err) }()

	if _, err = s.validate(ctx, userID, Requirement{}, &featureID); err != nil {
		return nil, err
	}

	if voteType == "" {
		voteType = "up"
	}
	var delta int
	switch voteType {
	case "up":
		delta = 1
	case "down":
		delta = -1
	default:
		return nil, errorx.New(http.StatusBadRequest, msgInvalidVoteType)
	}

	unlock := s.voteLocks.Lock(userID)
	defer unlock()

	lastVoted, err := s.store.LastVoted(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if isInWeekOf(lastVoted, now) {
		return nil, errorx.New(http.StatusForbidden, msgVoteOncePerWeek)
	}

	feature, err = s.store.CastVote(ctx, featureID, delta, userID, now)
	if err != nil {
		return nil, err
	}
	if feature == nil {
		// 投票期间被删除
		return nil, errorx.New(http.StatusBadRequest, msgUnknownFeature)
	}

	s.queue.Enqueue(ctx, WebhookJob(
		fmt.Sprintf("Feature Request has been %s voted", voteType),
		fmt.Sprintf("%s\n\nVotes: %d ", feature.Title, feature.Votes),
		ColorBlurple, "?q="+featureID))
	if !feature.Pending {
		s.publish(EventVoted, *feature)
	}
	return feature, nil
}

// clean 清理 HTML 并去除首尾空白
func (s *Service) clean(text string) string {
	return s.sanitize(strings.TrimSpace(text))
}

func (s *Service) publish(eventType string, feature model.FeatureRequest) {
	if s.events != nil {
		s.events.PublishFeatureEvent(eventType, feature)
	}
}

// errorMessage 取面向用户的消息
func errorMessage(err error) string {
	if ce, ok := err.(*errorx.CodeError); ok {
		return ce.Msg
	}
	return err.Error()
}
