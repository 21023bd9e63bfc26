package mocks

import (
	"context"

	"Huddle/models"

	"github.com/stretchr/testify/mock"
)

type ReadStateRepository struct {
	mock.Mock
}

func (m *ReadStateRepository) RefreshUnread(ctx context.Context, container models.ContainerRef, userIDs []string) ([]models.ReadState, error) {
	args := m.Called(ctx, container, userIDs)
	if states, ok := args.Get(0).([]models.ReadState); ok {
		return states, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ReadStateRepository) RefreshAfterDelete(ctx context.Context, container models.ContainerRef, sequence int64, authorID string) ([]models.ReadState, error) {
	args := m.Called(ctx, container, sequence, authorID)
	if states, ok := args.Get(0).([]models.ReadState); ok {
		return states, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ReadStateRepository) Save(ctx context.Context, state *models.ReadState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *ReadStateRepository) Find(ctx context.Context, userID string, containers []models.ContainerRef) ([]models.ReadState, error) {
	args := m.Called(ctx, userID, containers)
	if states, ok := args.Get(0).([]models.ReadState); ok {
		return states, args.Error(1)
	}
	return nil, args.Error(1)
}
