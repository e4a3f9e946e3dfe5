// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"bot_dashboard/internal/dao/mysql/repository"
	myredis "bot_dashboard/internal/dao/redis"
	"bot_dashboard/internal/service/pageview"
	"bot_dashboard/internal/service/votesystem"
)

// Services 聚合所有 Service 实例
type Services struct {
	Vote     VoteService
	PageView PageViewService
}

// Deps 构造 Services 所需的依赖
type Deps struct {
	Repos        *repository.Repositories
	Cache        myredis.AsyncCacheService // 可为 nil，此时直接读库
	VoteConfig   votesystem.Config
	VoteSettings votesystem.Settings
	Queue        votesystem.JobQueue
	Events       votesystem.EventPublisher // 可为 nil
}

// NewServices 创建并注入所有 Service 实例
func NewServices(deps Deps) *Services {
	var opts []votesystem.Option
	if deps.Events != nil {
		opts = append(opts, votesystem.WithEventPublisher(deps.Events))
	}
	store := votesystem.NewStore(deps.Repos, deps.Cache)

	var pvCache myredis.CacheService
	if deps.Cache != nil {
		pvCache = deps.Cache
	}

	return &Services{
		Vote:     votesystem.NewService(store, deps.VoteConfig, deps.VoteSettings, deps.Queue, opts...),
		PageView: pageview.NewService(deps.Repos.PageView, pvCache),
	}
}
