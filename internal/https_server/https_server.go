// Package https_server 提供 HTTP/HTTPS 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件和路由
package https_server

import (
	"bot_dashboard/internal/config"
	"bot_dashboard/internal/handler"
	"bot_dashboard/internal/infrastructure/logger"
	"bot_dashboard/internal/infrastructure/middleware"
	"bot_dashboard/internal/router"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Init 创建 Gin 引擎并注册中间件与路由
// pageView 为 nil 时不统计页面访问
func Init(conf *config.MainConfig, handlers *handler.Handlers, pageView middleware.PageViewTracker) *gin.Engine {
	if conf.Mode != "dev" && conf.Mode != gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(logger.RequestID())
	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))

	corsConfig := cors.DefaultConfig()
	if len(conf.CorsOrigins) > 0 {
		corsConfig.AllowOrigins = conf.CorsOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", logger.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{logger.RequestIDHeader}
	engine.Use(cors.New(corsConfig))

	// 由 Nginx 处理 SSL 时关闭
	if conf.SSLRedirect {
		engine.Use(middleware.TlsHandler(conf.Host, conf.Port))
	}

	router.NewRouter(handlers, pageView).RegisterRoutes(engine)
	return engine
}
