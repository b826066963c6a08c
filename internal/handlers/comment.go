package handlers

import (
	"net/http"

	"opinions/internal/middleware"
	"opinions/internal/services"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type createCommentRequest struct {
	Content     string `json:"content"`
	OpinionID   string `json:"opinionId"`
	ParentID    string `json:"parentId"`
	IsAnonymous bool   `json:"isAnonymous"`
}

// Create POST /api/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req createCommentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), services.CreateCommentInput{
		Content:     req.Content,
		OpinionID:   req.OpinionID,
		ParentID:    req.ParentID,
		IsAnonymous: req.IsAnonymous,
		UserID:      middleware.CurrentUserID(c),
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// List GET /api/comments/:opinionId，按时间正序的扁平列表
func (h *CommentHandler) List(c *gin.Context) {
	list, err := h.comments.List(c.Request.Context(), c.Param("opinionId"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Thread GET /api/comments/:opinionId/thread
func (h *CommentHandler) Thread(c *gin.Context) {
	tree, err := h.comments.Thread(c.Request.Context(), c.Param("opinionId"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

// Delete DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.comments.Delete(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c)); err != nil {
		RespondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Comment removed")
}
