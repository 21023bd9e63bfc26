package controllers

import (
	"net/http"

	"Huddle/apperrors"

	"github.com/gin-gonic/gin"
)

type UnreadController struct {
	unread UnreadService
}

func NewUnreadController(unread UnreadService) *UnreadController {
	return &UnreadController{unread: unread}
}

type fetchUnreadRequest struct {
	ChannelIDs      []string `json:"channelIds"`
	ConversationIDs []string `json:"conversationIds"`
}

// Fetch handles POST /api/unread/fetch.
func (uc *UnreadController) Fetch(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var input fetchUnreadRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.InvalidPayload(err.Error()))
		return
	}

	snapshot, err := uc.unread.Fetch(c.Request.Context(), userID, input.ChannelIDs, input.ConversationIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
