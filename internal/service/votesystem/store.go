package votesystem

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"bot_dashboard/internal/dao/mysql/repository"
	myredis "bot_dashboard/internal/dao/redis"
	"bot_dashboard/internal/model"
)

// Store 功能请求、用户附加状态与黑名单的存取接口
// 每次读取均视为调用时刻的权威数据
type Store interface {
	// FetchAll 返回全部功能请求
	FetchAll(ctx context.Context) ([]model.FeatureRequest, error)
	// Get 不存在时返回 nil, nil
	Get(ctx context.Context, id string) (*model.FeatureRequest, error)
	// Save 整体替换
	Save(ctx context.Context, req *model.FeatureRequest) error
	Delete(ctx context.Context, id string) error
	// CastVote 调整票数并记录投票时间，返回调整后的功能请求
	CastVote(ctx context.Context, id string, delta int, userID string, at time.Time) (*model.FeatureRequest, error)
	// LastVoted 从未投票时返回零值时间
	LastVoted(ctx context.Context, userID string) (time.Time, error)
	AutoApprove(ctx context.Context, userID string) (bool, error)
	IsBlacklisted(ctx context.Context, userID string) (bool, error)
}

const (
	requestListCacheKey = "website_requests"
	requestListCacheTTL = time.Minute
)

// repoStore 基于 MySQL Repository 的 Store 实现
// 全量列表使用 Redis 旁路缓存，写入时同步失效；cache 为 nil 时直接读库
type repoStore struct {
	repos *repository.Repositories
	cache myredis.AsyncCacheService
}

// NewStore 构造函数，cache 可为 nil
func NewStore(repos *repository.Repositories, cache myredis.AsyncCacheService) Store {
	return &repoStore{repos: repos, cache: cache}
}

// FetchAll 先查缓存，未命中再查库并异步回填
func (s *repoStore) FetchAll(ctx context.Context) ([]model.FeatureRequest, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, requestListCacheKey)
		if err == nil && cached != "" {
			var list []model.FeatureRequest
			jsonErr := json.Unmarshal([]byte(cached), &list)
			if jsonErr == nil {
				return list, nil
			}
			// 缓存数据脏了，继续查库
			zap.L().Error("Unmarshal feature request cache error", zap.Error(jsonErr))
		} else if err != nil {
			zap.L().Error("Redis get error", zap.Error(err))
		}
	}

	list, err := s.repos.FeatureRequest.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	// 确保序列化后是 [] 而不是 null
	if list == nil {
		list = make([]model.FeatureRequest, 0)
	}

	if s.cache != nil {
		if data, err := json.Marshal(list); err == nil {
			s.cache.SubmitTask(func() {
				if err := s.cache.Set(context.Background(), requestListCacheKey, string(data), requestListCacheTTL); err != nil {
					zap.L().Error("Refill feature request cache error", zap.Error(err))
				}
			})
		}
	}
	return list, nil
}

func (s *repoStore) Get(ctx context.Context, id string) (*model.FeatureRequest, error) {
	return s.repos.FeatureRequest.FindByID(ctx, id)
}

func (s *repoStore) Save(ctx context.Context, req *model.FeatureRequest) error {
	if err := s.repos.FeatureRequest.Save(ctx, req); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *repoStore) Delete(ctx context.Context, id string) error {
	if err := s.repos.FeatureRequest.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// CastVote 在同一事务中更新票数与投票时间
func (s *repoStore) CastVote(ctx context.Context, id string, delta int, userID string, at time.Time) (*model.FeatureRequest, error) {
	var updated *model.FeatureRequest
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.FeatureRequest.IncrementVotes(ctx, id, delta); err != nil {
			return err
		}
		if err := tx.UserSetting.UpsertLastVoted(ctx, userID, at); err != nil {
			return err
		}
		var err error
		updated, err = tx.FeatureRequest.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *repoStore) LastVoted(ctx context.Context, userID string) (time.Time, error) {
	setting, err := s.repos.UserSetting.FindByUserID(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}
	if setting == nil || setting.LastVoted == nil {
		return time.Time{}, nil
	}
	return *setting.LastVoted, nil
}

func (s *repoStore) AutoApprove(ctx context.Context, userID string) (bool, error) {
	setting, err := s.repos.UserSetting.FindByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	return setting != nil && setting.FeatureRequestAutoApprove, nil
}

func (s *repoStore) IsBlacklisted(ctx context.Context, userID string) (bool, error) {
	return s.repos.Blacklist.Exists(ctx, userID)
}

// invalidate 同步删除列表缓存，失败只记录日志
func (s *repoStore) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, requestListCacheKey); err != nil {
		zap.L().Error("Invalidate feature request cache error", zap.Error(err))
	}
}
