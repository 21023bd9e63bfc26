package impl

import (
	"context"
	"time"

	"Huddle/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ThreadParticipantRepositoryImpl struct {
	DB *gorm.DB
}

func NewThreadParticipantRepository(db *gorm.DB) *ThreadParticipantRepositoryImpl {
	return &ThreadParticipantRepositoryImpl{DB: db}
}

func (r *ThreadParticipantRepositoryImpl) Upsert(ctx context.Context, threadID, userID string, seenAt time.Time) error {
	participant := models.ThreadParticipant{ThreadID: threadID, UserID: userID, LastSeenAt: seenAt}
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "thread_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_seen_at"}),
	}).Create(&participant).Error
	return translate(err, "threadParticipantRepository.Upsert")
}
