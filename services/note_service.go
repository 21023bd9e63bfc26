package services

import (
	"context"
	"encoding/json"
	"errors"

	"Huddle/apperrors"
	"Huddle/repositories"
	"Huddle/rooms"
)

// NoteService relays live note edits between subscribers. Note content is
// not stored here.
type NoteService struct {
	Store       repositories.Store
	Auth        *AuthorizationService
	Broadcaster Broadcaster
}

func NewNoteService(store repositories.Store, auth *AuthorizationService, broadcaster Broadcaster) *NoteService {
	return &NoteService{Store: store, Auth: auth, Broadcaster: broadcaster}
}

// Authorize checks access through the note's channel, or its workspace for
// notes without one.
func (s *NoteService) Authorize(ctx context.Context, userID, noteID string) error {
	if noteID == "" {
		return apperrors.InvalidPayload("noteId is required")
	}
	note, err := s.Store.Memberships().FindNote(ctx, noteID)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.ErrNoteNotFound
	}
	if err != nil {
		return apperrors.Internal(err)
	}

	ok, err := s.Auth.canAccessNote(ctx, userID, note)
	if err != nil {
		return apperrors.Internal(err)
	}
	if !ok {
		return apperrors.NotAuthorized("Not authorized to access this note")
	}
	return nil
}

// Broadcast re-checks access on every edit and relays it to the other
// subscribers of the note room.
func (s *NoteService) Broadcast(ctx context.Context, session Session, noteID string, update json.RawMessage) error {
	if err := s.Authorize(ctx, session.UserID, noteID); err != nil {
		return err
	}
	s.Broadcaster.EmitExcept(rooms.Name(rooms.Note, noteID), EventNoteUpdate, NoteUpdate{
		NoteID: noteID,
		UserID: session.UserID,
		Update: update,
	}, session.ClientID)
	return nil
}
