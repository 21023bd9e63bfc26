package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"Huddle/apperrors"
	"Huddle/models"
	"Huddle/repositories/mocks"
	"Huddle/rooms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOnMessageCreated_RecountsEveryoneButTheAuthor(t *testing.T) {
	store := mocks.NewStore()
	b := &recordingBroadcaster{}
	unread := NewUnreadService(store, NewAuthorizationService(store), b)
	ctx := context.Background()
	channel := models.ChannelRef("general")

	store.MembershipRepo.On("ListMemberIDs", ctx, channel).Return([]string{"alice", "bob", "carol"}, nil)
	store.ReadStateRepo.On("RefreshUnread", ctx, channel, []string{"bob", "carol"}).Return([]models.ReadState{
		{UserID: "bob", ContainerKind: channel.Kind, ContainerID: channel.ID, UnreadCount: 4},
		{UserID: "carol", ContainerKind: channel.Kind, ContainerID: channel.ID, UnreadCount: 1},
	}, nil)

	msg := models.NewMessage("m1", "alice", "hi", channel, nil)
	require.NoError(t, unread.OnMessageCreated(ctx, msg))

	bob := b.find(rooms.ForUser("bob"), EventUnreadUpdate)
	require.Len(t, bob, 1)
	assert.Equal(t, int64(4), bob[0].Payload.(UnreadUpdate).UnreadCount)
	assert.Len(t, b.find(rooms.ForUser("carol"), EventUnreadUpdate), 1)
	assert.Empty(t, b.find(rooms.ForUser("alice"), EventUnreadUpdate))
	store.AssertExpectations(t)
}

func TestOnMessageCreated_RepliesAndStoreErrors(t *testing.T) {
	store := mocks.NewStore()
	b := &recordingBroadcaster{}
	unread := NewUnreadService(store, NewAuthorizationService(store), b)
	ctx := context.Background()
	dm := models.ConversationRef("dm")

	root := "root"
	require.NoError(t, unread.OnMessageCreated(ctx, models.NewMessage("r1", "alice", "re", dm, &root)))
	store.ReadStateRepo.AssertNotCalled(t, "RefreshUnread", mock.Anything, mock.Anything, mock.Anything)

	store.MembershipRepo.On("ListMemberIDs", ctx, dm).Return([]string{"alice", "bob"}, nil)
	store.ReadStateRepo.On("RefreshUnread", ctx, dm, []string{"bob"}).Return(nil, errors.New("db down"))

	err := unread.OnMessageCreated(ctx, models.NewMessage("m2", "alice", "hi", dm, nil))
	assert.Error(t, err)
	assert.Empty(t, b.find(rooms.ForUser("bob"), EventUnreadUpdate))
	store.AssertExpectations(t)
}

func TestMarkRead_PublishesTheStoredCount(t *testing.T) {
	store := mocks.NewStore()
	b := &recordingBroadcaster{}
	unread := NewUnreadService(store, NewAuthorizationService(store), b)
	ctx := context.Background()
	dm := models.ConversationRef("dm")

	store.MembershipRepo.On("IsConversationParticipant", ctx, "dm", "bob").Return(true, nil)
	store.MessageRepo.On("LatestSequence", ctx, dm).Return(int64(5), nil)
	// a message landed between LatestSequence and Save
	store.ReadStateRepo.On("Save", ctx, mock.MatchedBy(func(st *models.ReadState) bool {
		return st.UserID == "bob" && st.LastReadSequence == 5 && st.UnreadCount == 0
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.ReadState).UnreadCount = 1
	}).Return(nil)

	state, err := unread.MarkRead(ctx, "bob", dm, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), state.UnreadCount)

	updates := b.find(rooms.ForUser("bob"), EventUnreadUpdate)
	require.Len(t, updates, 1)
	assert.Equal(t, int64(1), updates[0].Payload.(UnreadUpdate).UnreadCount)
	store.AssertExpectations(t)
}

func newMockedMessageService(store *mocks.Store, b Broadcaster) *MessageService {
	auth := NewAuthorizationService(store)
	return NewMessageService(
		store,
		auth,
		NewSequenceAllocator(store, DefaultSequenceAttempts, time.Millisecond),
		NewRateLimiter(DefaultRateLimitMessages, DefaultRateLimitWindow),
		NewUnreadService(store, auth, b),
		b,
		0,
	)
}

func TestReply_TracksParticipantInsideTheTransaction(t *testing.T) {
	store := mocks.NewStore()
	b := &recordingBroadcaster{}
	svc := newMockedMessageService(store, b)
	ctx := context.Background()
	dm := models.ConversationRef("dm")

	store.MessageRepo.On("FindByID", ctx, "root").Return(models.NewMessage("root", "alice", "q", dm, nil), nil)
	store.MembershipRepo.On("IsConversationParticipant", ctx, "dm", "bob").Return(true, nil)
	store.MessageRepo.On("InsertWithNextSequence", ctx, mock.AnythingOfType("*models.Message")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Message).Sequence = 2 }).
		Return(nil)
	store.MessageRepo.On("IncrementReplyCount", ctx, "root", mock.AnythingOfType("time.Time")).Return(1, nil)
	store.ThreadParticipantRepo.On("Upsert", ctx, "root", "bob", mock.AnythingOfType("time.Time")).Return(nil)

	reply, err := svc.Reply(ctx, "bob", "root", "answer")
	require.NoError(t, err)
	assert.Equal(t, int64(2), reply.Sequence)
	assert.Equal(t, 1, store.Transactions)
	assert.Len(t, b.find(rooms.ForThread("root"), EventThreadNewReply), 1)
	store.AssertExpectations(t)
}

func TestReply_ParticipantFailureFailsTheReply(t *testing.T) {
	store := mocks.NewStore()
	b := &recordingBroadcaster{}
	svc := newMockedMessageService(store, b)
	ctx := context.Background()
	dm := models.ConversationRef("dm")

	store.MessageRepo.On("FindByID", ctx, "root").Return(models.NewMessage("root", "alice", "q", dm, nil), nil)
	store.MembershipRepo.On("IsConversationParticipant", ctx, "dm", "bob").Return(true, nil)
	store.MessageRepo.On("InsertWithNextSequence", ctx, mock.AnythingOfType("*models.Message")).Return(nil)
	store.MessageRepo.On("IncrementReplyCount", ctx, "root", mock.AnythingOfType("time.Time")).Return(1, nil)
	store.ThreadParticipantRepo.On("Upsert", ctx, "root", "bob", mock.AnythingOfType("time.Time")).
		Return(errors.New("db down"))

	reply, err := svc.Reply(ctx, "bob", "root", "answer")
	assert.Nil(t, reply)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
	assert.Empty(t, b.find(rooms.ForThread("root"), EventThreadNewReply))
	store.AssertExpectations(t)
}
