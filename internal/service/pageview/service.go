// Package pageview 记录登录用户的页面访问次数
// 同一用户同一页面 5 分钟内只计一次
package pageview

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"bot_dashboard/internal/dao/mysql/repository"
	myredis "bot_dashboard/internal/dao/redis"
	"bot_dashboard/internal/model"
)

// Cooldown 同一页面两次计数的最小间隔
const Cooldown = 5 * time.Minute

// Service 页面访问计数
type Service struct {
	repo  repository.PageViewRepository
	cache myredis.CacheService
	now   func() time.Time
}

// NewService 构造函数，cache 可为 nil
func NewService(repo repository.PageViewRepository, cache myredis.CacheService) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// PageKey 把请求路径转换为计数键："/vote/list" -> "vote.list"，"/" -> "root"
func PageKey(path string) string {
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return "root"
	}
	return strings.Join(parts, ".")
}

// Track 记录一次访问，返回是否计数
// Redis 作为冷却期的快速判断，数据库中的 lastVisited 为准
func (s *Service) Track(ctx context.Context, userID, path string) (bool, error) {
	page := PageKey(path)

	if s.cache != nil {
		ok, err := s.cache.SetNX(ctx, "page_view_"+userID+"_"+page, "1", Cooldown)
		if err != nil {
			// Redis 不可用时退回到数据库判断
			zap.L().Warn("page view cooldown cache error", zap.Error(err))
		} else if !ok {
			return false, nil
		}
	}

	view, err := s.repo.Find(ctx, userID, page)
	if err != nil {
		return false, err
	}
	now := s.now()
	if view != nil && now.Sub(view.LastVisited) <= Cooldown {
		return false, nil
	}
	if view == nil {
		view = &model.PageView{UserID: userID, Page: page}
	}
	view.Count++
	view.LastVisited = now

	if err := s.repo.Save(ctx, view); err != nil {
		return false, err
	}
	return true, nil
}
