package services

import (
	"context"
	"errors"
	"fmt"

	"Huddle/apperrors"
	"Huddle/models"
	"Huddle/repositories"
	"Huddle/rooms"
)

// AuthorizationService answers membership questions against the store on
// every call. Nothing is cached, so a removed member loses access on their
// next request.
type AuthorizationService struct {
	Store repositories.Store
}

func NewAuthorizationService(store repositories.Store) *AuthorizationService {
	return &AuthorizationService{Store: store}
}

func (s *AuthorizationService) IsChannelMember(ctx context.Context, channelID, userID string) (bool, error) {
	return s.Store.Memberships().IsChannelMember(ctx, channelID, userID)
}

func (s *AuthorizationService) IsConversationParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	return s.Store.Memberships().IsConversationParticipant(ctx, conversationID, userID)
}

func (s *AuthorizationService) IsOrganizationMember(ctx context.Context, organizationID, userID string) (bool, error) {
	return s.Store.Memberships().IsOrganizationMember(ctx, organizationID, userID)
}

// CanViewContainer admits channel members, workspace members for public
// channels, and conversation participants.
func (s *AuthorizationService) CanViewContainer(ctx context.Context, userID string, container models.ContainerRef) (bool, error) {
	switch container.Kind {
	case models.ContainerConversation:
		return s.IsConversationParticipant(ctx, container.ID, userID)
	case models.ContainerChannel:
		member, err := s.IsChannelMember(ctx, container.ID, userID)
		if err != nil || member {
			return member, err
		}
		channel, err := s.Store.Memberships().FindChannel(ctx, container.ID)
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if channel.IsPrivate {
			return false, nil
		}
		return s.IsOrganizationMember(ctx, channel.OrganizationID, userID)
	}
	return false, nil
}

// CanPostContainer requires actual membership, public channels included.
func (s *AuthorizationService) CanPostContainer(ctx context.Context, userID string, container models.ContainerRef) (bool, error) {
	switch container.Kind {
	case models.ContainerConversation:
		return s.IsConversationParticipant(ctx, container.ID, userID)
	case models.ContainerChannel:
		return s.IsChannelMember(ctx, container.ID, userID)
	}
	return false, nil
}

// AuthorizeView returns a scoped NOT_AUTHORIZED error such as
// "Not authorized to view replies in this channel".
func (s *AuthorizationService) AuthorizeView(ctx context.Context, userID string, container models.ContainerRef, action string) error {
	ok, err := s.CanViewContainer(ctx, userID, container)
	return verdict(ok, err, action, container)
}

func (s *AuthorizationService) AuthorizePost(ctx context.Context, userID string, container models.ContainerRef, action string) error {
	ok, err := s.CanPostContainer(ctx, userID, container)
	return verdict(ok, err, action, container)
}

func verdict(ok bool, err error, action string, container models.ContainerRef) error {
	if err != nil {
		return apperrors.Internal(err)
	}
	if !ok {
		return apperrors.NotAuthorized(fmt.Sprintf("Not authorized to %s in this %s", action, container.Kind))
	}
	return nil
}

// CanAccessScope decides room subscriptions. A thread scope whose id is a
// reply or a deleted root fails with an AppError instead of false.
func (s *AuthorizationService) CanAccessScope(ctx context.Context, userID string, scope rooms.Scope) (bool, error) {
	if err := scope.Validate(); err != nil {
		return false, nil
	}

	switch scope.Kind {
	case rooms.Channel:
		return s.CanViewContainer(ctx, userID, models.ChannelRef(scope.ID))
	case rooms.Conversation:
		return s.CanViewContainer(ctx, userID, models.ConversationRef(scope.ID))
	case rooms.Workspace:
		return s.IsOrganizationMember(ctx, scope.ID, userID)
	case rooms.User:
		return scope.ID == userID, nil
	case rooms.Thread:
		parent, err := s.Store.Messages().FindByID(ctx, scope.ID)
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if parent.IsReply() {
			return false, apperrors.ErrNotThreadRoot
		}
		if parent.IsDeleted() {
			return false, apperrors.ErrThreadDeleted
		}
		return s.CanViewContainer(ctx, userID, parent.Container())
	case rooms.Note:
		note, err := s.Store.Memberships().FindNote(ctx, scope.ID)
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return s.canAccessNote(ctx, userID, note)
	}
	return false, nil
}

func (s *AuthorizationService) canAccessNote(ctx context.Context, userID string, note *models.Note) (bool, error) {
	if note.ChannelID != nil && *note.ChannelID != "" {
		return s.CanViewContainer(ctx, userID, models.ChannelRef(*note.ChannelID))
	}
	return s.IsOrganizationMember(ctx, note.OrganizationID, userID)
}
