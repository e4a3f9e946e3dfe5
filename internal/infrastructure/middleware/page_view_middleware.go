package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PageViewTracker 页面访问计数
type PageViewTracker interface {
	Track(ctx context.Context, userID, path string) (bool, error)
}

// PageView 记录已登录用户的页面访问
// 只统计浏览器直接打开且成功响应的页面：GET、非 XHR、Accept 包含 text/html、状态码 < 400
func PageView(tracker PageViewTracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		userID := GetUserID(c)
		if userID == "" || c.Writer.Status() >= http.StatusBadRequest || !isPageRequest(c.Request) {
			return
		}
		path := c.Request.URL.Path
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if _, err := tracker.Track(ctx, userID, path); err != nil {
				zap.L().Warn("track page view failed", zap.String("path", path), zap.Error(err))
			}
		}()
	}
}

func isPageRequest(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	if strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest") {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
