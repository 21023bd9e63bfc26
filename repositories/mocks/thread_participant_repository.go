package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type ThreadParticipantRepository struct {
	mock.Mock
}

func (m *ThreadParticipantRepository) Upsert(ctx context.Context, threadID, userID string, seenAt time.Time) error {
	args := m.Called(ctx, threadID, userID, seenAt)
	return args.Error(0)
}
