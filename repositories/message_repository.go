package repositories

import (
	"context"
	"time"

	"Huddle/models"
)

type MessageRepository interface {
	// InsertWithNextSequence assigns MAX(sequence)+1 within the message's
	// container and inserts it in one statement, setting msg.Sequence.
	InsertWithNextSequence(ctx context.Context, msg *models.Message) error
	FindByID(ctx context.Context, id string) (*models.Message, error)
	SoftDelete(ctx context.Context, id string, at time.Time) (bool, error)
	IncrementReplyCount(ctx context.Context, parentID string, at time.Time) (int, error)
	ListReplies(ctx context.Context, parentID string, afterSequence int64, limit int) ([]models.Message, error)
	LatestSequence(ctx context.Context, container models.ContainerRef) (int64, error)
	CountUnreadAfter(ctx context.Context, container models.ContainerRef, afterSequence int64, excludeAuthorID string) (int64, error)
}
