package repositories

import (
	"context"

	"Huddle/models"
)

// MembershipRepository answers membership questions straight from the store.
type MembershipRepository interface {
	IsChannelMember(ctx context.Context, channelID, userID string) (bool, error)
	IsConversationParticipant(ctx context.Context, conversationID, userID string) (bool, error)
	IsOrganizationMember(ctx context.Context, organizationID, userID string) (bool, error)
	FindChannel(ctx context.Context, channelID string) (*models.Channel, error)
	FindNote(ctx context.Context, noteID string) (*models.Note, error)
	ListMemberIDs(ctx context.Context, container models.ContainerRef) ([]string, error)
}
