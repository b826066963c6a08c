package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"opinions/internal/middleware"
	"opinions/internal/services"

	"github.com/gin-gonic/gin"
)

// statusFor 业务错误到 HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrDepthExceeded),
		errors.Is(err, services.ErrInvalidOTP):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrAuth),
		errors.Is(err, services.ErrForbidden):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// RespondError 统一错误响应 {"message": "..."}
func RespondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()

	var se *services.Error
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"request_id", c.GetString(middleware.RequestIDKey),
			"path", c.FullPath(),
			"error", err,
		)
		if !errors.As(err, &se) {
			msg = "Server error"
		}
	}
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

func respondMessage(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"message": message})
}

// bindJSON 解析失败时直接返回 400
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
