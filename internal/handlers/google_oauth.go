package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/url"

	"opinions/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const oauthStateKey = "oauth_state"

// generateStateToken 生成随机 state token
func generateStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// redirectToClient 登录结果通过 URL fragment 交给前端
func (h *AuthHandler) redirectToClient(c *gin.Context, values url.Values) {
	c.Redirect(http.StatusFound, h.clientURL+"/#"+values.Encode())
}

// GoogleLogin 发起 Google OAuth 登录
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state, err := generateStateToken()
	if err != nil {
		RespondError(c, err)
		return
	}

	// state 存入 session，回调时校验
	session := sessions.Default(c)
	session.Set(oauthStateKey, state)
	if err := session.Save(); err != nil {
		RespondError(c, err)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.google.AuthCodeURL(state))
}

// GoogleCallback 处理 Google OAuth 回调
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	session := sessions.Default(c)
	savedState, _ := session.Get(oauthStateKey).(string)

	if savedState == "" || c.Query("state") != savedState {
		h.redirectToClient(c, url.Values{"error": {"invalid_state"}})
		return
	}

	// state 只用一次
	session.Delete(oauthStateKey)
	if err := session.Save(); err != nil {
		slog.WarnContext(c.Request.Context(), "failed to clear oauth state", "error", err)
	}

	code := c.Query("code")
	if code == "" {
		h.redirectToClient(c, url.Values{"error": {"no_code"}})
		return
	}

	res, err := h.auth.GoogleLogin(c.Request.Context(), services.GoogleCredentials{Code: code})
	if err != nil {
		slog.WarnContext(c.Request.Context(), "google callback login failed", "error", err)
		h.redirectToClient(c, url.Values{"error": {"google_login_failed"}})
		return
	}

	h.redirectToClient(c, url.Values{"token": {res.Token}})
}
