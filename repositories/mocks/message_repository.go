package mocks

import (
	"context"
	"time"

	"Huddle/models"

	"github.com/stretchr/testify/mock"
)

type MessageRepository struct {
	mock.Mock
}

func (m *MessageRepository) InsertWithNextSequence(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MessageRepository) FindByID(ctx context.Context, id string) (*models.Message, error) {
	args := m.Called(ctx, id)
	if msg, ok := args.Get(0).(*models.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MessageRepository) SoftDelete(ctx context.Context, id string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MessageRepository) IncrementReplyCount(ctx context.Context, parentID string, at time.Time) (int, error) {
	args := m.Called(ctx, parentID, at)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepository) ListReplies(ctx context.Context, parentID string, afterSequence int64, limit int) ([]models.Message, error) {
	args := m.Called(ctx, parentID, afterSequence, limit)
	if msgs, ok := args.Get(0).([]models.Message); ok {
		return msgs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MessageRepository) LatestSequence(ctx context.Context, container models.ContainerRef) (int64, error) {
	args := m.Called(ctx, container)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageRepository) CountUnreadAfter(ctx context.Context, container models.ContainerRef, afterSequence int64, excludeAuthorID string) (int64, error) {
	args := m.Called(ctx, container, afterSequence, excludeAuthorID)
	return args.Get(0).(int64), args.Error(1)
}
