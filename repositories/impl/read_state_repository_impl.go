package impl

import (
	"context"
	"fmt"
	"sort"
	"time"

	"Huddle/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReadStateRepositoryImpl struct {
	DB *gorm.DB
}

func NewReadStateRepository(db *gorm.DB) *ReadStateRepositoryImpl {
	return &ReadStateRepositoryImpl{DB: db}
}

var readStateKey = []clause.Column{{Name: "user_id"}, {Name: "container_kind"}, {Name: "container_id"}}

// recountSQL rewrites unread_count from the messages table. Run after the
// target rows are locked so the statement snapshot sees every committed send.
const recountSQL = `UPDATE read_states AS rs
	SET unread_count = (
		SELECT COUNT(*) FROM messages m
		WHERE m.%s = rs.container_id
			AND m.sequence > rs.last_read_sequence
			AND m.parent_id IS NULL AND m.deleted_at IS NULL
			AND m.author_id <> rs.user_id
	), updated_at = ?
	WHERE rs.container_kind = ? AND rs.container_id = ? AND rs.user_id IN ?
	RETURNING rs.*`

func recount(tx *gorm.DB, container models.ContainerRef, userIDs []string) ([]models.ReadState, error) {
	var states []models.ReadState
	err := tx.Raw(fmt.Sprintf(recountSQL, container.Column()),
		time.Now().UTC(), container.Kind, container.ID, userIDs,
	).Scan(&states).Error
	return states, err
}

// lockStates takes row locks in user_id order and returns the ids it locked.
func lockStates(tx *gorm.DB, container models.ContainerRef, query string, args ...interface{}) ([]string, error) {
	var locked []models.ReadState
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("container_kind = ? AND container_id = ?", container.Kind, container.ID).
		Where(query, args...).
		Order("user_id").
		Find(&locked).Error
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(locked))
	for _, s := range locked {
		ids = append(ids, s.UserID)
	}
	return ids, nil
}

func (r *ReadStateRepositoryImpl) RefreshUnread(ctx context.Context, container models.ContainerRef, userIDs []string) ([]models.ReadState, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	sorted := append([]string(nil), userIDs...)
	sort.Strings(sorted)

	now := time.Now().UTC()
	rows := make([]models.ReadState, 0, len(sorted))
	for _, userID := range sorted {
		rows = append(rows, models.ReadState{
			UserID:        userID,
			ContainerKind: container.Kind,
			ContainerID:   container.ID,
			UpdatedAt:     now,
		})
	}

	var states []models.ReadState
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{Columns: readStateKey, DoNothing: true}).Create(&rows).Error
		if err != nil {
			return err
		}
		ids, err := lockStates(tx, container, "user_id IN ?", sorted)
		if err != nil {
			return err
		}
		states, err = recount(tx, container, ids)
		return err
	})
	if err != nil {
		return nil, translate(err, "readStateRepository.RefreshUnread")
	}
	return states, nil
}

func (r *ReadStateRepositoryImpl) RefreshAfterDelete(ctx context.Context, container models.ContainerRef, sequence int64, authorID string) ([]models.ReadState, error) {
	var states []models.ReadState
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := lockStates(tx, container, "last_read_sequence < ? AND user_id <> ?", sequence, authorID)
		if err != nil || len(ids) == 0 {
			return err
		}
		states, err = recount(tx, container, ids)
		return err
	})
	if err != nil {
		return nil, translate(err, "readStateRepository.RefreshAfterDelete")
	}
	return states, nil
}

// Save moves the cursor and recounts from the store, overwriting
// state.UnreadCount with the stored value.
func (r *ReadStateRepositoryImpl) Save(ctx context.Context, state *models.ReadState) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   readStateKey,
			DoUpdates: clause.AssignmentColumns([]string{"last_read_sequence", "unread_count", "updated_at"}),
		}).Create(state).Error
		if err != nil {
			return err
		}
		states, err := recount(tx, state.Container(), []string{state.UserID})
		if err != nil {
			return err
		}
		if len(states) == 1 {
			*state = states[0]
		}
		return nil
	})
	return translate(err, "readStateRepository.Save")
}

// Find returns the stored states among containers; missing ones are omitted.
func (r *ReadStateRepositoryImpl) Find(ctx context.Context, userID string, containers []models.ContainerRef) ([]models.ReadState, error) {
	var channelIDs, conversationIDs []string
	for _, c := range containers {
		if c.Kind == models.ContainerConversation {
			conversationIDs = append(conversationIDs, c.ID)
		} else {
			channelIDs = append(channelIDs, c.ID)
		}
	}
	if len(channelIDs) == 0 && len(conversationIDs) == 0 {
		return nil, nil
	}

	db := r.DB.WithContext(ctx)
	cond := db.Where("1 = 0")
	if len(channelIDs) > 0 {
		cond = cond.Or("container_kind = ? AND container_id IN ?", models.ContainerChannel, channelIDs)
	}
	if len(conversationIDs) > 0 {
		cond = cond.Or("container_kind = ? AND container_id IN ?", models.ContainerConversation, conversationIDs)
	}

	var states []models.ReadState
	if err := db.Where("user_id = ?", userID).Where(cond).Find(&states).Error; err != nil {
		return nil, translate(err, "readStateRepository.Find")
	}
	return states, nil
}
