package services

import (
	"context"

	"Huddle/apperrors"
	"Huddle/models"
	"Huddle/repositories"
	"Huddle/rooms"
)

// UnreadService keeps per-user unread counters in step with message writes.
// Only top-level messages count; thread replies never move a counter.
type UnreadService struct {
	Store       repositories.Store
	Auth        *AuthorizationService
	Broadcaster Broadcaster
}

func NewUnreadService(store repositories.Store, auth *AuthorizationService, broadcaster Broadcaster) *UnreadService {
	return &UnreadService{Store: store, Auth: auth, Broadcaster: broadcaster}
}

// OnMessageCreated recounts every member except the author. Recounting
// instead of incrementing keeps concurrent sends from losing updates.
func (s *UnreadService) OnMessageCreated(ctx context.Context, msg *models.Message) error {
	if msg.IsReply() {
		return nil
	}

	container := msg.Container()
	members, err := s.Store.Memberships().ListMemberIDs(ctx, container)
	if err != nil {
		return err
	}

	recipients := make([]string, 0, len(members))
	for _, id := range members {
		if id != msg.AuthorID {
			recipients = append(recipients, id)
		}
	}
	if len(recipients) == 0 {
		return nil
	}

	states, err := s.Store.ReadStates().RefreshUnread(ctx, container, recipients)
	if err != nil {
		return err
	}
	s.publish(states)
	return nil
}

// OnMessageDeleted takes a deleted top-level message back out of the
// counters that included it.
func (s *UnreadService) OnMessageDeleted(ctx context.Context, msg *models.Message) error {
	if msg.IsReply() {
		return nil
	}
	states, err := s.Store.ReadStates().RefreshAfterDelete(ctx, msg.Container(), msg.Sequence, msg.AuthorID)
	if err != nil {
		return err
	}
	s.publish(states)
	return nil
}

// MarkRead moves the cursor to messageID, or to the latest message when
// messageID is nil. Repeating it yields the same state.
func (s *UnreadService) MarkRead(ctx context.Context, userID string, container models.ContainerRef, messageID *string) (*models.ReadState, error) {
	if err := container.Validate(); err != nil {
		return nil, apperrors.InvalidPayload("containerRef with kind channel or conversation and an id is required")
	}
	if err := s.Auth.AuthorizeView(ctx, userID, container, "read messages"); err != nil {
		return nil, err
	}

	state := &models.ReadState{
		UserID:        userID,
		ContainerKind: container.Kind,
		ContainerID:   container.ID,
	}

	if messageID != nil && *messageID != "" {
		msg, err := findMessage(ctx, s.Store, *messageID)
		if err != nil {
			return nil, err
		}
		if msg.Container() != container {
			return nil, apperrors.InvalidPayload("Message does not belong to this " + string(container.Kind))
		}
		count, err := s.Store.Messages().CountUnreadAfter(ctx, container, msg.Sequence, userID)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		state.LastReadSequence = msg.Sequence
		state.UnreadCount = count
	} else {
		latest, err := s.Store.Messages().LatestSequence(ctx, container)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		state.LastReadSequence = latest
		state.UnreadCount = 0
	}

	if err := s.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// MarkMessageUnread puts the cursor just before messageID and recounts.
func (s *UnreadService) MarkMessageUnread(ctx context.Context, userID, messageID string) (*models.ReadState, error) {
	msg, err := findMessage(ctx, s.Store, messageID)
	if err != nil {
		return nil, err
	}
	if msg.IsDeleted() {
		return nil, apperrors.ErrMessageNotFound
	}

	container := msg.Container()
	if err := s.Auth.AuthorizeView(ctx, userID, container, "read messages"); err != nil {
		return nil, err
	}

	cursor := msg.Sequence - 1
	count, err := s.Store.Messages().CountUnreadAfter(ctx, container, cursor, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	state := &models.ReadState{
		UserID:           userID,
		ContainerKind:    container.Kind,
		ContainerID:      container.ID,
		LastReadSequence: cursor,
		UnreadCount:      count,
	}
	if err := s.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Fetch reads the caller's own counters in one query. Containers without a
// state report 0.
func (s *UnreadService) Fetch(ctx context.Context, userID string, channelIDs, conversationIDs []string) (*UnreadSnapshot, error) {
	snapshot := &UnreadSnapshot{
		Channels:      make(map[string]int64, len(channelIDs)),
		Conversations: make(map[string]int64, len(conversationIDs)),
	}

	containers := make([]models.ContainerRef, 0, len(channelIDs)+len(conversationIDs))
	for _, id := range channelIDs {
		snapshot.Channels[id] = 0
		containers = append(containers, models.ChannelRef(id))
	}
	for _, id := range conversationIDs {
		snapshot.Conversations[id] = 0
		containers = append(containers, models.ConversationRef(id))
	}
	if len(containers) == 0 {
		return snapshot, nil
	}

	states, err := s.Store.ReadStates().Find(ctx, userID, containers)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	for _, st := range states {
		switch st.ContainerKind {
		case models.ContainerChannel:
			snapshot.Channels[st.ContainerID] = st.UnreadCount
		case models.ContainerConversation:
			snapshot.Conversations[st.ContainerID] = st.UnreadCount
		}
	}
	return snapshot, nil
}

func (s *UnreadService) save(ctx context.Context, state *models.ReadState) error {
	state.UpdatedAt = nowUTC()
	if err := s.Store.ReadStates().Save(ctx, state); err != nil {
		return apperrors.Internal(err)
	}
	s.publish([]models.ReadState{*state})
	return nil
}

func (s *UnreadService) publish(states []models.ReadState) {
	for _, st := range states {
		s.Broadcaster.Emit(rooms.ForUser(st.UserID), EventUnreadUpdate, NewUnreadUpdate(st))
	}
}
