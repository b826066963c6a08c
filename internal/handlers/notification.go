package handlers

import (
	"net/http"

	"opinions/internal/middleware"
	"opinions/internal/services"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	ctx := c.Request.Context()

	list, err := h.notifications.List(ctx, userID)
	if err != nil {
		RespondError(c, err)
		return
	}
	unread, err := h.notifications.UnreadCount(ctx, userID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list, "unreadCount": unread})
}

func (h *NotificationHandler) Read(c *gin.Context) {
	if err := h.notifications.MarkRead(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c)); err != nil {
		RespondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Notification marked as read")
}

func (h *NotificationHandler) ReadAll(c *gin.Context) {
	if err := h.notifications.MarkAllRead(c.Request.Context(), middleware.CurrentUserID(c)); err != nil {
		RespondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "All notifications marked as read")
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.notifications.Delete(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c)); err != nil {
		RespondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Notification removed")
}
