package handlers

import (
	"net/http"

	"opinions/internal/middleware"
	"opinions/internal/services"
	"opinions/internal/utils"

	"github.com/gin-gonic/gin"
)

type OpinionHandler struct {
	opinions *services.OpinionService
}

func NewOpinionHandler(opinions *services.OpinionService) *OpinionHandler {
	return &OpinionHandler{opinions: opinions}
}

type createOpinionRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Topic       string `json:"topic"`
	IsAnonymous bool   `json:"isAnonymous"`
}

type interactRequest struct {
	Type string `json:"type"`
}

// Create POST /api/opinions
func (h *OpinionHandler) Create(c *gin.Context) {
	var req createOpinionRequest
	if !bindJSON(c, &req) {
		return
	}
	op, err := h.opinions.Create(c.Request.Context(), services.CreateOpinionInput{
		Title:       req.Title,
		Content:     req.Content,
		Topic:       req.Topic,
		IsAnonymous: req.IsAnonymous,
		UserID:      middleware.CurrentUserID(c),
		IP:          c.ClientIP(),
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, op)
}

// List GET /api/opinions?topic=&sort=&userId=&page=
func (h *OpinionHandler) List(c *gin.Context) {
	list, err := h.opinions.List(c.Request.Context(), services.FeedQuery{
		Topic:    c.Query("topic"),
		Sort:     c.DefaultQuery("sort", services.SortLatest),
		UserID:   c.Query("userId"),
		ViewerID: middleware.CurrentUserID(c),
		Page:     utils.PositiveInt(c.Query("page"), 1),
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Get GET /api/opinions/:id
func (h *OpinionHandler) Get(c *gin.Context) {
	op, err := h.opinions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, op)
}

// Interact PUT /api/opinions/:id/interact
func (h *OpinionHandler) Interact(c *gin.Context) {
	var req interactRequest
	if !bindJSON(c, &req) {
		return
	}
	op, err := h.opinions.Interact(c.Request.Context(), c.Param("id"), req.Type)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, op)
}
