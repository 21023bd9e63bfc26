package repositories

import (
	"context"
	"time"
)

type ThreadParticipantRepository interface {
	Upsert(ctx context.Context, threadID, userID string, seenAt time.Time) error
}
