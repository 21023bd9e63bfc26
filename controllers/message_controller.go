package controllers

import (
	"net/http"
	"strconv"

	"Huddle/apperrors"
	"Huddle/models"
	"Huddle/services"

	"github.com/gin-gonic/gin"
)

type MessageController struct {
	messages MessageService
}

func NewMessageController(messages MessageService) *MessageController {
	return &MessageController{messages: messages}
}

type sendRequest struct {
	ContainerRef models.ContainerRef `json:"containerRef"`
	Content      string              `json:"content"`
	ParentID     *string             `json:"parentId"`
}

// Send handles POST /api/messages.
func (mc *MessageController) Send(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var input sendRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.InvalidPayload(err.Error()))
		return
	}

	msg, err := mc.messages.Send(c.Request.Context(), userID, services.SendInput{
		Container: input.ContainerRef,
		Content:   input.Content,
		ParentID:  input.ParentID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// Delete handles DELETE /api/messages/:message_id. An optional container
// can be passed as ?kind=&id= to assert where the message lives.
func (mc *MessageController) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var container *models.ContainerRef
	if kind := c.Query("kind"); kind != "" {
		container = &models.ContainerRef{Kind: models.ContainerKind(kind), ID: c.Query("id")}
		if err := container.Validate(); err != nil {
			respondError(c, apperrors.InvalidPayload(err.Error()))
			return
		}
	}

	if err := mc.messages.Delete(c.Request.Context(), userID, c.Param("message_id"), container); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Replies handles GET /api/threads/:parent_id/replies?after=&limit=.
func (mc *MessageController) Replies(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	after, err := queryInt(c, "after")
	if err != nil {
		respondError(c, apperrors.InvalidPayload("after must be an integer"))
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondError(c, apperrors.InvalidPayload("limit must be an integer"))
		return
	}

	replies, err := mc.messages.GetReplies(c.Request.Context(), userID, c.Param("parent_id"), after, int(limit))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"replies": replies})
}

func queryInt(c *gin.Context, key string) (int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
