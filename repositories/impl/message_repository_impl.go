package impl

import (
	"context"
	"fmt"
	"time"

	"Huddle/models"
	"Huddle/repositories"

	"gorm.io/gorm"
)

type MessageRepositoryImpl struct {
	DB *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepositoryImpl {
	return &MessageRepositoryImpl{DB: db}
}

// The aggregate always yields one row, so an empty container starts at 1.
// Two writers reading the same MAX collide on the (container, sequence)
// unique index and the loser gets a unique violation.
const insertWithSequenceSQL = `
INSERT INTO messages (id, content, author_id, channel_id, conversation_id, parent_id, reply_count, sequence, created_at, updated_at)
SELECT ?, ?, ?, ?, ?, ?, 0, COALESCE(MAX(m.sequence), 0) + 1, ?, ?
FROM messages m
WHERE m.%s = ?
RETURNING sequence`

func (r *MessageRepositoryImpl) InsertWithNextSequence(ctx context.Context, msg *models.Message) error {
	container := msg.Container()
	if err := container.Validate(); err != nil {
		return err
	}

	var sequence int64
	query := fmt.Sprintf(insertWithSequenceSQL, container.Column())
	res := r.DB.WithContext(ctx).Raw(query,
		msg.ID, msg.Content, msg.AuthorID, msg.ChannelID, msg.ConversationID, msg.ParentID,
		msg.CreatedAt, msg.UpdatedAt, container.ID,
	).Scan(&sequence)
	if res.Error != nil {
		return translate(res.Error, "messageRepository.InsertWithNextSequence")
	}
	msg.Sequence = sequence
	return nil
}

// FindByID returns soft-deleted rows too; callers decide what deletion means.
func (r *MessageRepositoryImpl) FindByID(ctx context.Context, id string) (*models.Message, error) {
	var msg models.Message
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&msg).Error
	if err != nil {
		return nil, translate(err, "messageRepository.FindByID")
	}
	return &msg, nil
}

func (r *MessageRepositoryImpl) SoftDelete(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Message{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{
			"deleted_at": at,
			"updated_at": at,
		})
	if res.Error != nil {
		return false, translate(res.Error, "messageRepository.SoftDelete")
	}
	return res.RowsAffected > 0, nil
}

// IncrementReplyCount only touches live top-level messages, so a parent
// deleted mid-reply makes the reply's transaction fail.
func (r *MessageRepositoryImpl) IncrementReplyCount(ctx context.Context, parentID string, at time.Time) (int, error) {
	var count int
	res := r.DB.WithContext(ctx).Raw(
		`UPDATE messages SET reply_count = reply_count + 1, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL AND parent_id IS NULL
		RETURNING reply_count`, at, parentID,
	).Scan(&count)
	if res.Error != nil {
		return 0, translate(res.Error, "messageRepository.IncrementReplyCount")
	}
	if res.RowsAffected == 0 {
		return 0, repositories.ErrNotFound
	}
	return count, nil
}

func (r *MessageRepositoryImpl) ListReplies(ctx context.Context, parentID string, afterSequence int64, limit int) ([]models.Message, error) {
	var messages []models.Message
	query := r.DB.WithContext(ctx).
		Where("parent_id = ? AND deleted_at IS NULL AND sequence > ?", parentID, afterSequence).
		Order("sequence ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&messages).Error; err != nil {
		return nil, translate(err, "messageRepository.ListReplies")
	}
	return messages, nil
}

func (r *MessageRepositoryImpl) LatestSequence(ctx context.Context, container models.ContainerRef) (int64, error) {
	var sequence int64
	err := r.DB.WithContext(ctx).Model(&models.Message{}).
		Where(container.Column()+" = ?", container.ID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&sequence).Error
	if err != nil {
		return 0, translate(err, "messageRepository.LatestSequence")
	}
	return sequence, nil
}

func (r *MessageRepositoryImpl) CountUnreadAfter(ctx context.Context, container models.ContainerRef, afterSequence int64, excludeAuthorID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Message{}).
		Where(container.Column()+" = ?", container.ID).
		Where("sequence > ? AND deleted_at IS NULL AND parent_id IS NULL AND author_id <> ?", afterSequence, excludeAuthorID).
		Count(&count).Error
	if err != nil {
		return 0, translate(err, "messageRepository.CountUnreadAfter")
	}
	return count, nil
}
