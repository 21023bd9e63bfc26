package mocks

import (
	"context"

	"Huddle/models"

	"github.com/stretchr/testify/mock"
)

type MembershipRepository struct {
	mock.Mock
}

func (m *MembershipRepository) IsChannelMember(ctx context.Context, channelID, userID string) (bool, error) {
	args := m.Called(ctx, channelID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MembershipRepository) IsConversationParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	args := m.Called(ctx, conversationID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MembershipRepository) IsOrganizationMember(ctx context.Context, organizationID, userID string) (bool, error) {
	args := m.Called(ctx, organizationID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MembershipRepository) FindChannel(ctx context.Context, channelID string) (*models.Channel, error) {
	args := m.Called(ctx, channelID)
	if ch, ok := args.Get(0).(*models.Channel); ok {
		return ch, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MembershipRepository) FindNote(ctx context.Context, noteID string) (*models.Note, error) {
	args := m.Called(ctx, noteID)
	if note, ok := args.Get(0).(*models.Note); ok {
		return note, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MembershipRepository) ListMemberIDs(ctx context.Context, container models.ContainerRef) ([]string, error) {
	args := m.Called(ctx, container)
	if ids, ok := args.Get(0).([]string); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}
