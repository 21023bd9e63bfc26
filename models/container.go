package models

import (
	"errors"
	"strings"

	"Huddle/rooms"
)

type ContainerKind string

const (
	ContainerChannel      ContainerKind = "channel"
	ContainerConversation ContainerKind = "conversation"
)

var ErrInvalidContainer = errors.New("invalid container reference")

// ContainerRef points at the channel or conversation a message lives in.
type ContainerRef struct {
	Kind ContainerKind `json:"kind"`
	ID   string        `json:"id"`
}

func ChannelRef(id string) ContainerRef {
	return ContainerRef{Kind: ContainerChannel, ID: id}
}

func ConversationRef(id string) ContainerRef {
	return ContainerRef{Kind: ContainerConversation, ID: id}
}

func (c ContainerRef) Validate() error {
	if c.Kind != ContainerChannel && c.Kind != ContainerConversation {
		return ErrInvalidContainer
	}
	if strings.TrimSpace(c.ID) == "" {
		return ErrInvalidContainer
	}
	return nil
}

// Column is the messages column holding this container's id.
func (c ContainerRef) Column() string {
	if c.Kind == ContainerConversation {
		return "conversation_id"
	}
	return "channel_id"
}

func (c ContainerRef) Scope() rooms.Scope {
	if c.Kind == ContainerConversation {
		return rooms.Scope{Kind: rooms.Conversation, ID: c.ID}
	}
	return rooms.Scope{Kind: rooms.Channel, ID: c.ID}
}

func (c ContainerRef) Room() string {
	return c.Scope().Room()
}

func (c ContainerRef) String() string {
	return string(c.Kind) + ":" + c.ID
}
