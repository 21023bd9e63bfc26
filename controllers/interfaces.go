package controllers

import (
	"context"

	"Huddle/models"
	"Huddle/services"
)

// MessageService is the subset of services.MessageService the HTTP surface uses.
type MessageService interface {
	Send(ctx context.Context, userID string, in services.SendInput) (*models.Message, error)
	Delete(ctx context.Context, userID, messageID string, container *models.ContainerRef) error
	GetReplies(ctx context.Context, userID, parentID string, afterSequence int64, limit int) ([]models.Message, error)
}

type UnreadService interface {
	Fetch(ctx context.Context, userID string, channelIDs, conversationIDs []string) (*services.UnreadSnapshot, error)
}
