// Package rooms maps logical scopes to broadcast room names.
package rooms

import (
	"errors"
	"strings"
)

type Kind string

const (
	Channel      Kind = "channel"
	Conversation Kind = "conversation"
	Thread       Kind = "thread"
	User         Kind = "user"
	Workspace    Kind = "workspace"
	Note         Kind = "note"
)

var ErrInvalidScope = errors.New("invalid scope")

// Scope identifies something sockets can subscribe to.
type Scope struct {
	Kind Kind   `json:"scopeKind"`
	ID   string `json:"scopeId"`
}

func (k Kind) Valid() bool {
	switch k {
	case Channel, Conversation, Thread, User, Workspace, Note:
		return true
	}
	return false
}

// Name is deterministic: the same scope always yields the same room.
func Name(kind Kind, id string) string {
	return string(kind) + ":" + id
}

func (s Scope) Room() string {
	return Name(s.Kind, s.ID)
}

func (s Scope) Validate() error {
	if !s.Kind.Valid() || strings.TrimSpace(s.ID) == "" {
		return ErrInvalidScope
	}
	return nil
}

// Parse is the inverse of Name.
func Parse(room string) (Scope, error) {
	kind, id, ok := strings.Cut(room, ":")
	s := Scope{Kind: Kind(kind), ID: id}
	if !ok {
		return Scope{}, ErrInvalidScope
	}
	if err := s.Validate(); err != nil {
		return Scope{}, err
	}
	return s, nil
}

func ForUser(userID string) string { return Name(User, userID) }

func ForThread(parentID string) string { return Name(Thread, parentID) }
