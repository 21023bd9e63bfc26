package services

import (
	"context"
	"sync"
	"time"

	"Huddle/apperrors"
	"Huddle/models"
	"Huddle/rooms"

	"golang.org/x/time/rate"
)

const (
	DefaultTypingThrottle = 3 * time.Second
	DefaultTypingExpiry   = 5 * time.Second
)

type typingKey struct {
	userID    string
	container models.ContainerRef
}

type typingEntry struct {
	clientID string
	timer    *time.Timer
	gen      uint64
}

type userPresence struct {
	sockets    map[string]struct{}
	workspaces map[string]string
}

// PresenceService tracks typing indicators and workspace presence in memory
// only. Nothing here touches the store except the authorization checks.
type PresenceService struct {
	Auth        *AuthorizationService
	Broadcaster Broadcaster
	Throttle    time.Duration
	Expiry      time.Duration

	mu       sync.Mutex
	gen      uint64
	typing   map[typingKey]*typingEntry
	limiters map[typingKey]*rate.Limiter
	presence map[string]*userPresence
}

func NewPresenceService(auth *AuthorizationService, broadcaster Broadcaster, throttle, expiry time.Duration) *PresenceService {
	if throttle <= 0 {
		throttle = DefaultTypingThrottle
	}
	if expiry <= 0 {
		expiry = DefaultTypingExpiry
	}
	return &PresenceService{
		Auth:        auth,
		Broadcaster: broadcaster,
		Throttle:    throttle,
		Expiry:      expiry,
		typing:      make(map[typingKey]*typingEntry),
		limiters:    make(map[typingKey]*rate.Limiter),
		presence:    make(map[string]*userPresence),
	}
}

// TypingStart broadcasts at most once per Throttle for a (user, container)
// and re-arms the expiry timer on every call.
func (s *PresenceService) TypingStart(ctx context.Context, session Session, target models.ContainerRef) error {
	if err := target.Validate(); err != nil {
		return apperrors.InvalidPayload("targetId and targetType are required")
	}
	if err := s.Auth.AuthorizeView(ctx, session.UserID, target, "type"); err != nil {
		return err
	}

	key := typingKey{userID: session.UserID, container: target}

	s.mu.Lock()
	limiter, ok := s.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(s.Throttle), 1)
		s.limiters[key] = limiter
	}
	allowed := limiter.Allow()

	s.gen++
	gen := s.gen
	if entry, ok := s.typing[key]; ok {
		entry.timer.Stop()
	}
	s.typing[key] = &typingEntry{
		clientID: session.ClientID,
		gen:      gen,
		timer:    time.AfterFunc(s.Expiry, func() { s.expire(key, gen) }),
	}
	s.mu.Unlock()

	if allowed {
		s.Broadcaster.EmitExcept(target.Room(), EventTypingStart, typingEvent(key), session.ClientID)
	}
	return nil
}

// TypingStop cancels a pending indicator. Stopping when not typing is a no-op.
func (s *PresenceService) TypingStop(ctx context.Context, session Session, target models.ContainerRef) error {
	if err := target.Validate(); err != nil {
		return apperrors.InvalidPayload("targetId and targetType are required")
	}
	key := typingKey{userID: session.UserID, container: target}

	s.mu.Lock()
	entry, ok := s.typing[key]
	if ok {
		entry.timer.Stop()
		delete(s.typing, key)
	}
	s.mu.Unlock()

	if ok {
		s.Broadcaster.EmitExcept(target.Room(), EventTypingStop, typingEvent(key), session.ClientID)
	}
	return nil
}

func (s *PresenceService) expire(key typingKey, gen uint64) {
	s.mu.Lock()
	entry, ok := s.typing[key]
	if !ok || entry.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.typing, key)
	s.mu.Unlock()

	s.Broadcaster.Emit(key.container.Room(), EventTypingStop, typingEvent(key))
}

func typingEvent(key typingKey) TypingEvent {
	return TypingEvent{UserID: key.userID, TargetID: key.container.ID, TargetType: key.container.Kind}
}

// Connect registers a socket for presence bookkeeping.
func (s *PresenceService) Connect(session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.presence[session.UserID]
	if !ok {
		p = &userPresence{sockets: make(map[string]struct{}), workspaces: make(map[string]string)}
		s.presence[session.UserID] = p
	}
	p.sockets[session.ClientID] = struct{}{}
}

// UpdatePresence announces status to the workspace room.
func (s *PresenceService) UpdatePresence(ctx context.Context, session Session, organizationID, status string) error {
	if organizationID == "" {
		return apperrors.InvalidPayload("organizationId is required")
	}
	if status != PresenceActive && status != PresenceAway {
		return apperrors.InvalidPayload("status must be active or away")
	}

	ok, err := s.Auth.IsOrganizationMember(ctx, organizationID, session.UserID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if !ok {
		return apperrors.NotAuthorized("Not authorized to update presence in this workspace")
	}

	s.mu.Lock()
	p, found := s.presence[session.UserID]
	if !found {
		p = &userPresence{sockets: make(map[string]struct{}), workspaces: make(map[string]string)}
		s.presence[session.UserID] = p
	}
	p.sockets[session.ClientID] = struct{}{}
	p.workspaces[organizationID] = status
	s.mu.Unlock()

	s.Broadcaster.Emit(rooms.Name(rooms.Workspace, organizationID), EventPresenceUpdate, PresenceEvent{
		UserID:         session.UserID,
		OrganizationID: organizationID,
		Status:         status,
	})
	return nil
}

// Status returns the last announced status, or offline.
func (s *PresenceService) Status(userID, organizationID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.presence[userID]; ok {
		if status, ok := p.workspaces[organizationID]; ok {
			return status
		}
	}
	return PresenceOffline
}

// Disconnect clears the socket's typing indicators. When it was the user's
// last socket every announced workspace sees the user go offline.
func (s *PresenceService) Disconnect(session Session) {
	var stopped []typingKey
	var offline []string

	s.mu.Lock()
	for key, entry := range s.typing {
		if key.userID == session.UserID && entry.clientID == session.ClientID {
			entry.timer.Stop()
			delete(s.typing, key)
			stopped = append(stopped, key)
		}
	}

	if p, ok := s.presence[session.UserID]; ok {
		delete(p.sockets, session.ClientID)
		if len(p.sockets) == 0 {
			for org := range p.workspaces {
				offline = append(offline, org)
			}
			delete(s.presence, session.UserID)
			for key := range s.limiters {
				if key.userID == session.UserID {
					delete(s.limiters, key)
				}
			}
		}
	}
	s.mu.Unlock()

	for _, key := range stopped {
		s.Broadcaster.Emit(key.container.Room(), EventTypingStop, typingEvent(key))
	}
	for _, org := range offline {
		s.Broadcaster.Emit(rooms.Name(rooms.Workspace, org), EventPresenceUpdate, PresenceEvent{
			UserID:         session.UserID,
			OrganizationID: org,
			Status:         PresenceOffline,
		})
	}
}
