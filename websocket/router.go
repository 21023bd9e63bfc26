package websocket

import (
	"context"
	"errors"
	"fmt"

	"Huddle/apperrors"
	"Huddle/logger"
	"Huddle/rooms"
	"Huddle/services"
)

// ScopeAuthorizer decides whether a user may join a scope's room.
type ScopeAuthorizer interface {
	CanAccessScope(ctx context.Context, userID string, scope rooms.Scope) (bool, error)
}

// Router gates room subscriptions. Membership is re-checked on every
// subscribe; being in a room grants nothing else.
type Router struct {
	Hub  *Hub
	Auth ScopeAuthorizer
}

func NewRouter(hub *Hub, auth ScopeAuthorizer) *Router {
	return &Router{Hub: hub, Auth: auth}
}

// Subscribe joins the client to scope's room if the gate allows it. A
// refusal also sends the client a scoped error event.
func (r *Router) Subscribe(ctx context.Context, client *Client, scope rooms.Scope) (string, error) {
	if err := scope.Validate(); err != nil {
		return "", apperrors.InvalidPayload("scopeKind and scopeId are required")
	}

	ok, err := r.Auth.CanAccessScope(ctx, client.UserID, scope)
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		r.refuse(client, scope, appErr)
		return "", appErr
	case err != nil:
		logger.Error("subscribe check failed", "user", client.UserID, "scope", scope.Room(), "error", err)
		return "", apperrors.Internal(err)
	case !ok:
		denied := apperrors.NotAuthorized(fmt.Sprintf("Not authorized to subscribe to this %s", scope.Kind))
		r.refuse(client, scope, denied)
		return "", denied
	}

	room := scope.Room()
	r.Hub.Join(client, room)
	return room, nil
}

func (r *Router) refuse(client *Client, scope rooms.Scope, err *apperrors.AppError) {
	event := NewErrorEvent("", err)
	event.Scope = scope.Room()
	r.Hub.SendTo(client, Outbound{Event: services.EventError, Data: event})
}

func (r *Router) Unsubscribe(client *Client, scope rooms.Scope) (string, error) {
	if err := scope.Validate(); err != nil {
		return "", apperrors.InvalidPayload("scopeKind and scopeId are required")
	}
	room := scope.Room()
	r.Hub.Leave(client, room)
	return room, nil
}
