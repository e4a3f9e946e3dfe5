package middleware

import (
	"net/http"
	"strings"

	"bot_dashboard/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

// ContextUserID gin.Context 中保存用户 ID 的 key
const ContextUserID = "user_id"

// JWTAuth JWT 认证中间件
// 验证 Access Token 并将用户 ID 存入上下文
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, msg := parseBearer(c)
		if msg != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"errorCode": http.StatusUnauthorized,
				"error":     msg,
			})
			return
		}
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// OptionalJWTAuth 可选认证：Token 有效时写入用户 ID，否则按匿名用户继续
func OptionalJWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, msg := parseBearer(c); msg == "" {
			c.Set(ContextUserID, userID)
		}
		c.Next()
	}
}

// GetUserID 从上下文取出用户 ID，匿名请求返回空字符串
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// parseBearer 解析 Authorization 头，失败时返回错误消息
func parseBearer(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "Authorization header is missing."
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "Authorization header must use the Bearer scheme."
	}

	claims, err := jwt.ParseToken(parts[1])
	if err != nil {
		return "", "Token is expired or invalid."
	}
	return claims.UserID, ""
}
