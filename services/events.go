package services

import (
	"encoding/json"

	"Huddle/models"
)

// Outbound event names.
const (
	EventMessageNew     = "message:new"
	EventMessageDeleted = "message:deleted"
	EventMessageReplies = "message:replyCount"
	EventThreadNewReply = "thread:newReply"
	EventUnreadUpdate   = "unread:update"
	EventTypingStart    = "typing:start"
	EventTypingStop     = "typing:stop"
	EventPresenceUpdate = "presence:update"
	EventNoteUpdate     = "note:update"
	EventError          = "error"
)

const (
	PresenceActive  = "active"
	PresenceAway    = "away"
	PresenceOffline = "offline"
)

const (
	DefaultRepliesLimit = 50
	MaxRepliesLimit     = 100
)

type MessageDeleted struct {
	MessageID     string               `json:"messageId"`
	ParentID      *string              `json:"parentId,omitempty"`
	ContainerKind models.ContainerKind `json:"containerKind"`
	ContainerID   string               `json:"containerId"`
}

type ReplyCountUpdate struct {
	MessageID  string `json:"messageId"`
	ReplyCount int    `json:"replyCount"`
}

type ThreadReply struct {
	ParentID string          `json:"parentId"`
	Reply    *models.Message `json:"reply"`
}

type UnreadUpdate struct {
	ContainerKind    models.ContainerKind `json:"containerKind"`
	ContainerID      string               `json:"containerId"`
	UnreadCount      int64                `json:"unreadCount"`
	LastReadSequence int64                `json:"lastReadSequence"`
}

func NewUnreadUpdate(state models.ReadState) UnreadUpdate {
	return UnreadUpdate{
		ContainerKind:    state.ContainerKind,
		ContainerID:      state.ContainerID,
		UnreadCount:      state.UnreadCount,
		LastReadSequence: state.LastReadSequence,
	}
}

type TypingEvent struct {
	UserID     string               `json:"userId"`
	TargetID   string               `json:"targetId"`
	TargetType models.ContainerKind `json:"targetType"`
}

type PresenceEvent struct {
	UserID         string `json:"userId"`
	OrganizationID string `json:"organizationId"`
	Status         string `json:"status"`
}

type NoteUpdate struct {
	NoteID string          `json:"noteId"`
	UserID string          `json:"userId"`
	Update json.RawMessage `json:"update,omitempty"`
}

// UnreadSnapshot is the batch answer to unread:fetch. Unknown containers map to 0.
type UnreadSnapshot struct {
	Channels      map[string]int64 `json:"channels"`
	Conversations map[string]int64 `json:"conversations"`
}
