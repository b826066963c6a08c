package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const UserIDKey = "user_id"

// LegacyTokenHeader 旧版客户端使用的 token 请求头
const LegacyTokenHeader = "x-auth-token"

// TokenParser 校验 token 并返回用户 ID
type TokenParser interface {
	Parse(token string) (string, error)
}

// tokenFromRequest 优先 Authorization: Bearer，其次 x-auth-token
func tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return strings.TrimSpace(c.GetHeader(LegacyTokenHeader))
}

// AuthRequired rejects requests without a valid token.
func AuthRequired(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token, authorization denied"})
			return
		}
		userID, err := tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// LoadUser 有 token 就解析，无效 token 视为匿名访问
func LoadUser(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := tokenFromRequest(c); raw != "" {
			if userID, err := tokens.Parse(raw); err == nil {
				c.Set(UserIDKey, userID)
			}
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user id, or "" for guests.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
