package repositories

import (
	"context"

	"Huddle/models"
)

type ReadStateRepository interface {
	// RefreshUnread recounts the listed users' unread messages from the
	// store, creating missing states with the cursor at 0. The result does
	// not depend on the order concurrent calls arrive in.
	RefreshUnread(ctx context.Context, container models.ContainerRef, userIDs []string) ([]models.ReadState, error)
	// RefreshAfterDelete recounts every state whose cursor is below sequence,
	// the author's excepted.
	RefreshAfterDelete(ctx context.Context, container models.ContainerRef, sequence int64, authorID string) ([]models.ReadState, error)
	// Save stores the cursor and recounts; state.UnreadCount is updated.
	Save(ctx context.Context, state *models.ReadState) error
	Find(ctx context.Context, userID string, containers []models.ContainerRef) ([]models.ReadState, error)
}
