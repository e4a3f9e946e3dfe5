package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bot_dashboard/internal/config"
	dao "bot_dashboard/internal/dao/mysql"
	myredis "bot_dashboard/internal/dao/redis"
	"bot_dashboard/internal/gateway/websocket"
	"bot_dashboard/internal/handler"
	"bot_dashboard/internal/https_server"
	"bot_dashboard/internal/infrastructure/discord"
	"bot_dashboard/internal/infrastructure/logger"
	"bot_dashboard/internal/infrastructure/mq"
	"bot_dashboard/internal/service"
	"bot_dashboard/internal/service/votesystem"
	"bot_dashboard/pkg/util/jwt"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = zap.L().Sync() }()
	zap.L().Info("日志初始化成功")

	if err := handler.InitTrans("en"); err != nil {
		zap.L().Fatal("init validator translator failed", zap.Error(err))
	}

	// 3. 初始化 JWT
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry)

	// 4. 初始化数据库
	repos, err := dao.Init(&conf.MysqlConfig)
	if err != nil {
		zap.L().Fatal("数据库初始化失败", zap.Error(err))
	}
	zap.L().Info("数据库初始化成功")

	// 5. 初始化 Redis，不可用时退化为直接读库
	var cache myredis.AsyncCacheService
	redisCache, err := myredis.Init(&conf.RedisConfig)
	if err != nil {
		zap.L().Warn("Redis 不可用，关闭缓存", zap.Error(err))
	} else {
		cache = redisCache
		zap.L().Info("Redis 初始化成功")
	}

	// 6. 投票系统配置
	voteConfig := votesystem.NewConfig(conf.VoteConfig)
	voteSettings, err := votesystem.NewSettings(conf.VoteSettingsConfig)
	if err != nil {
		zap.L().Fatal("投票系统配置错误", zap.Error(err))
	}

	// 7. 通知投递
	var dm votesystem.DirectMessenger
	if conf.DiscordConfig.BotToken != "" {
		messenger, err := discord.NewMessenger(conf.DiscordConfig.BotToken)
		if err != nil {
			zap.L().Fatal("Discord 初始化失败", zap.Error(err))
		}
		dm = messenger
	} else {
		zap.L().Warn("未配置 Discord Bot Token，不发送作者私信")
	}
	dispatcher := votesystem.NewDispatcher(voteConfig, voteSettings, dm, nil)

	var broker mq.Broker
	if conf.NotifyConfig.Mode == "kafka" {
		broker = mq.NewKafkaBroker(&conf.NotifyConfig)
	} else {
		broker = mq.NewChannelBroker(conf.NotifyConfig.Workers, conf.NotifyConfig.BufferSize)
	}
	broker.Start(dispatcher.Handle)
	zap.L().Info("通知队列启动成功", zap.String("mode", conf.NotifyConfig.Mode))

	// 8. 实时推送
	ctx, cancel := context.WithCancel(context.Background())
	hub := websocket.NewHub()
	go hub.Run(ctx)

	// 9. Service / Handler 层 (依赖注入)
	svc := service.NewServices(service.Deps{
		Repos:        repos,
		Cache:        cache,
		VoteConfig:   voteConfig,
		VoteSettings: voteSettings,
		Queue:        votesystem.NewBrokerQueue(broker),
		Events:       hub,
	})
	handlers := handler.NewHandlers(svc, hub)

	// 10. 启动 HTTP 服务
	engine := https_server.Init(&conf.MainConfig, handlers, svc.PageView)
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: engine,
	}
	go func() {
		zap.L().Info("HTTP 服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("关闭服务器...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("server shutdown", zap.Error(err))
	}
	cancel()
	if err := broker.Close(); err != nil {
		zap.L().Error("broker close", zap.Error(err))
	}
	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			zap.L().Error("redis close", zap.Error(err))
		}
	}
	zap.L().Info("服务器已关闭")
}
