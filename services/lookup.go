package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"Huddle/apperrors"
	"Huddle/models"
	"Huddle/repositories"
)

var nowUTC = func() time.Time { return time.Now().UTC() }

// findMessage loads a message, soft-deleted ones included, mapping store
// errors onto stable codes.
func findMessage(ctx context.Context, store repositories.Store, id string) (*models.Message, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.InvalidPayload("messageId is required")
	}
	msg, err := store.Messages().FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.ErrMessageNotFound
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return msg, nil
}
