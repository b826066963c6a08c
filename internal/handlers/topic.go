package handlers

import (
	"net/http"

	"opinions/internal/services"

	"github.com/gin-gonic/gin"
)

type TopicHandler struct {
	topics *services.TopicService
}

func NewTopicHandler(topics *services.TopicService) *TopicHandler {
	return &TopicHandler{topics: topics}
}

type createTopicRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// List GET /api/topics
func (h *TopicHandler) List(c *gin.Context) {
	topics, err := h.topics.List(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, topics)
}

// Create POST /api/topics
func (h *TopicHandler) Create(c *gin.Context) {
	var req createTopicRequest
	if !bindJSON(c, &req) {
		return
	}
	topic, err := h.topics.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, topic)
}
