package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"Huddle/apperrors"
	"Huddle/logger"
	"Huddle/metrics"
	"Huddle/models"
	"Huddle/repositories"
	"Huddle/rooms"

	"github.com/google/uuid"
)

type SendInput struct {
	Container models.ContainerRef
	Content   string
	ParentID  *string
}

type MessageService struct {
	Store       repositories.Store
	Auth        *AuthorizationService
	Allocator   *SequenceAllocator
	Limiter     *RateLimiter
	Unread      *UnreadService
	Broadcaster Broadcaster
	MaxLength   int

	newID func() string
	now   func() time.Time
}

func NewMessageService(
	store repositories.Store,
	auth *AuthorizationService,
	allocator *SequenceAllocator,
	limiter *RateLimiter,
	unread *UnreadService,
	broadcaster Broadcaster,
	maxLength int,
) *MessageService {
	if maxLength <= 0 {
		maxLength = models.MaxContentLength
	}
	return &MessageService{
		Store:       store,
		Auth:        auth,
		Allocator:   allocator,
		Limiter:     limiter,
		Unread:      unread,
		Broadcaster: broadcaster,
		MaxLength:   maxLength,
		newID:       uuid.NewString,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Send validates, sequences and fans out a top-level message. A non-empty
// ParentID routes through Reply.
func (s *MessageService) Send(ctx context.Context, userID string, in SendInput) (*models.Message, error) {
	if in.ParentID != nil && *in.ParentID != "" {
		return s.Reply(ctx, userID, *in.ParentID, in.Content)
	}
	if err := in.Container.Validate(); err != nil {
		return nil, apperrors.InvalidPayload("containerRef with kind channel or conversation and an id is required")
	}
	if err := s.Auth.AuthorizePost(ctx, userID, in.Container, "send messages"); err != nil {
		return nil, err
	}
	if err := s.checkContent(in.Content); err != nil {
		return nil, err
	}
	if err := s.checkRate(userID); err != nil {
		return nil, err
	}

	draft := s.draft(userID, in.Content, in.Container, nil)
	msg, err := s.Allocator.AllocateAndInsert(ctx, draft)
	if err != nil {
		return nil, err
	}
	metrics.MessagesCreated.WithLabelValues(string(in.Container.Kind)).Inc()

	s.Broadcaster.Emit(in.Container.Room(), EventMessageNew, msg)

	// The message is committed; counter drift is logged, not surfaced.
	if err := s.Unread.OnMessageCreated(ctx, msg); err != nil {
		logger.Error("unread increment failed", "message", msg.ID, "error", err)
	}
	return msg, nil
}

// Reply appends to the thread rooted at parentID. Nesting is rejected
// before authorization.
func (s *MessageService) Reply(ctx context.Context, userID, parentID, content string) (*models.Message, error) {
	parent, err := findMessage(ctx, s.Store, parentID)
	if err != nil {
		return nil, err
	}
	if parent.IsReply() {
		return nil, apperrors.ErrCannotReplyToReply
	}
	if parent.IsDeleted() {
		return nil, apperrors.ErrParentDeleted
	}

	container := parent.Container()
	if err := s.Auth.AuthorizePost(ctx, userID, container, "reply"); err != nil {
		return nil, err
	}
	if err := s.checkContent(content); err != nil {
		return nil, err
	}
	if err := s.checkRate(userID); err != nil {
		return nil, err
	}

	var replyCount int
	now := s.now()
	bumpParent := func(ctx context.Context, tx repositories.Store, _ *models.Message) error {
		count, err := tx.Messages().IncrementReplyCount(ctx, parent.ID, now)
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.ErrParentDeleted
		}
		replyCount = count
		return err
	}
	trackParticipant := func(ctx context.Context, tx repositories.Store, _ *models.Message) error {
		return tx.ThreadParticipants().Upsert(ctx, parent.ID, userID, now)
	}

	parentRef := parent.ID
	draft := s.draft(userID, content, container, &parentRef)
	reply, err := s.Allocator.AllocateAndInsert(ctx, draft, bumpParent, trackParticipant)
	if err != nil {
		return nil, err
	}
	metrics.MessagesCreated.WithLabelValues(string(container.Kind)).Inc()

	s.Broadcaster.Emit(rooms.ForThread(parent.ID), EventThreadNewReply, ThreadReply{ParentID: parent.ID, Reply: reply})
	s.Broadcaster.Emit(container.Room(), EventMessageReplies, ReplyCountUpdate{MessageID: parent.ID, ReplyCount: replyCount})
	return reply, nil
}

// Delete soft-deletes the caller's own message. The sequence slot stays
// taken.
func (s *MessageService) Delete(ctx context.Context, userID, messageID string, container *models.ContainerRef) error {
	msg, err := findMessage(ctx, s.Store, messageID)
	if err != nil {
		return err
	}
	if msg.AuthorID != userID {
		return apperrors.ErrNotAuthor
	}
	if container != nil && *container != msg.Container() {
		return apperrors.InvalidPayload("Message does not belong to this " + string(container.Kind))
	}
	if msg.IsDeleted() {
		return apperrors.ErrAlreadyDeleted
	}

	changed, err := s.Store.Messages().SoftDelete(ctx, msg.ID, s.now())
	if err != nil {
		return apperrors.Internal(err)
	}
	if !changed {
		return apperrors.ErrAlreadyDeleted
	}

	ref := msg.Container()
	event := MessageDeleted{
		MessageID:     msg.ID,
		ParentID:      msg.ParentID,
		ContainerKind: ref.Kind,
		ContainerID:   ref.ID,
	}
	s.Broadcaster.Emit(ref.Room(), EventMessageDeleted, event)
	if msg.IsReply() {
		s.Broadcaster.Emit(rooms.ForThread(*msg.ParentID), EventMessageDeleted, event)
	}

	if err := s.Unread.OnMessageDeleted(ctx, msg); err != nil {
		logger.Error("unread decrement failed", "message", msg.ID, "error", err)
	}
	return nil
}

// GetReplies pages through live replies ordered by sequence.
func (s *MessageService) GetReplies(ctx context.Context, userID, parentID string, afterSequence int64, limit int) ([]models.Message, error) {
	parent, err := findMessage(ctx, s.Store, parentID)
	if err != nil {
		return nil, err
	}
	if parent.IsReply() {
		return nil, apperrors.ErrNotThreadRoot
	}
	if parent.IsDeleted() {
		return nil, apperrors.ErrThreadDeleted
	}
	if err := s.Auth.AuthorizeView(ctx, userID, parent.Container(), "view replies"); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultRepliesLimit
	}
	if limit > MaxRepliesLimit {
		limit = MaxRepliesLimit
	}
	if afterSequence < 0 {
		afterSequence = 0
	}

	replies, err := s.Store.Messages().ListReplies(ctx, parent.ID, afterSequence, limit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if replies == nil {
		replies = []models.Message{}
	}
	return replies, nil
}

func (s *MessageService) checkContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return apperrors.ErrMessageEmpty
	}
	if utf8.RuneCountInString(content) > s.MaxLength {
		return apperrors.ErrMessageTooLong(s.MaxLength)
	}
	return nil
}

func (s *MessageService) checkRate(userID string) error {
	ok, retryAfter := s.Limiter.Allow(userID)
	if ok {
		return nil
	}
	metrics.RateLimited.Inc()
	return apperrors.RateLimited(retryAfter)
}

func (s *MessageService) draft(userID, content string, container models.ContainerRef, parentID *string) *models.Message {
	now := s.now()
	msg := models.NewMessage(s.newID(), userID, content, container, parentID)
	msg.CreatedAt = now
	msg.UpdatedAt = now
	return msg
}
