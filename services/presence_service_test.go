package services

import (
	"context"
	"testing"
	"time"

	"Huddle/apperrors"
	"Huddle/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPresenceHarness(throttle, expiry time.Duration) (*PresenceService, *memStore, *recordingBroadcaster) {
	store := newMemStore()
	b := &recordingBroadcaster{}
	return NewPresenceService(NewAuthorizationService(store), b, throttle, expiry), store, b
}

func TestTypingStart_ThrottledPerUserAndContainer(t *testing.T) {
	presence, store, b := newPresenceHarness(time.Hour, time.Hour)
	channel := store.addChannel("general", "acme", false, "alice")
	session := Session{UserID: "alice", ClientID: "sock-1"}

	for i := 0; i < 3; i++ {
		require.NoError(t, presence.TypingStart(context.Background(), session, channel))
	}

	starts := b.find("channel:general", EventTypingStart)
	require.Len(t, starts, 1)
	assert.Equal(t, "sock-1", starts[0].Except)
	assert.Equal(t, TypingEvent{UserID: "alice", TargetID: "general", TargetType: models.ContainerChannel}, starts[0].Payload)
}

func TestTypingStart_ExpiresIntoStop(t *testing.T) {
	presence, store, b := newPresenceHarness(time.Hour, 20*time.Millisecond)
	channel := store.addChannel("general", "acme", false, "alice")

	require.NoError(t, presence.TypingStart(context.Background(), Session{UserID: "alice", ClientID: "s"}, channel))

	assert.Eventually(t, func() bool {
		return len(b.find("channel:general", EventTypingStop)) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestTypingStop_CancelsTimer(t *testing.T) {
	presence, store, b := newPresenceHarness(time.Hour, 30*time.Millisecond)
	channel := store.addChannel("general", "acme", false, "alice")
	session := Session{UserID: "alice", ClientID: "s"}
	ctx := context.Background()

	require.NoError(t, presence.TypingStart(ctx, session, channel))
	require.NoError(t, presence.TypingStop(ctx, session, channel))
	// second stop is a no-op
	require.NoError(t, presence.TypingStop(ctx, session, channel))

	time.Sleep(60 * time.Millisecond)
	assert.Len(t, b.find("channel:general", EventTypingStop), 1)
}

func TestTypingStart_RequiresViewAccess(t *testing.T) {
	presence, store, b := newPresenceHarness(time.Hour, time.Hour)
	channel := store.addChannel("secret", "acme", true, "alice")

	err := presence.TypingStart(context.Background(), Session{UserID: "mallory", ClientID: "s"}, channel)

	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotAuthorized))
	assert.Empty(t, b.find("channel:secret", EventTypingStart))
}

func TestPresence_UpdateAndLastSocketDisconnect(t *testing.T) {
	presence, store, b := newPresenceHarness(time.Hour, time.Hour)
	store.addOrgMember("acme", "alice")
	channel := store.addChannel("general", "acme", false, "alice")
	ctx := context.Background()
	phone := Session{UserID: "alice", ClientID: "phone"}
	laptop := Session{UserID: "alice", ClientID: "laptop"}

	presence.Connect(phone)
	presence.Connect(laptop)
	require.NoError(t, presence.UpdatePresence(ctx, phone, "acme", PresenceAway))
	assert.Equal(t, PresenceAway, presence.Status("alice", "acme"))
	require.NoError(t, presence.TypingStart(ctx, laptop, channel))

	presence.Disconnect(laptop)
	assert.Len(t, b.find("channel:general", EventTypingStop), 1)
	assert.Len(t, b.find("workspace:acme", EventPresenceUpdate), 1)

	presence.Disconnect(phone)
	updates := b.find("workspace:acme", EventPresenceUpdate)
	require.Len(t, updates, 2)
	assert.Equal(t, PresenceOffline, updates[1].Payload.(PresenceEvent).Status)
	assert.Equal(t, PresenceOffline, presence.Status("alice", "acme"))
}

func TestPresence_Validation(t *testing.T) {
	presence, store, _ := newPresenceHarness(time.Hour, time.Hour)
	store.addOrgMember("acme", "alice")
	ctx := context.Background()
	session := Session{UserID: "alice", ClientID: "s"}

	err := presence.UpdatePresence(ctx, session, "acme", "busy")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidPayload))

	err = presence.UpdatePresence(ctx, Session{UserID: "mallory", ClientID: "m"}, "acme", PresenceActive)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotAuthorized))
}
