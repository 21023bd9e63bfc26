package websocket

import (
	"encoding/json"

	"Huddle/models"
)

type SendPayload struct {
	ContainerRef *models.ContainerRef `json:"containerRef"`
	Content      string               `json:"content"`
	ParentID     *string              `json:"parentId,omitempty"`
}

type DeletePayload struct {
	MessageID    string               `json:"messageId"`
	ContainerRef *models.ContainerRef `json:"containerRef,omitempty"`
}

type ReplyPayload struct {
	ParentID string `json:"parentId"`
	Content  string `json:"content"`
}

type ThreadPayload struct {
	ParentID string `json:"parentId"`
}

type RepliesPayload struct {
	ParentID      string `json:"parentId"`
	AfterSequence int64  `json:"afterSequence,omitempty"`
	Limit         int    `json:"limit,omitempty"`
}

type FetchUnreadPayload struct {
	ChannelIDs      []string `json:"channelIds"`
	ConversationIDs []string `json:"conversationIds"`
}

type MarkReadPayload struct {
	ContainerRef models.ContainerRef `json:"containerRef"`
	MessageID    *string             `json:"messageId,omitempty"`
}

type MarkUnreadPayload struct {
	MessageID string `json:"messageId"`
}

type TypingPayload struct {
	TargetID   string               `json:"targetId"`
	TargetType models.ContainerKind `json:"targetType"`
}

func (p TypingPayload) Container() models.ContainerRef {
	return models.ContainerRef{Kind: p.TargetType, ID: p.TargetID}
}

type PresencePayload struct {
	OrganizationID string `json:"organizationId"`
	Status         string `json:"status"`
}

type NotePayload struct {
	NoteID string          `json:"noteId"`
	Update json.RawMessage `json:"update,omitempty"`
}
