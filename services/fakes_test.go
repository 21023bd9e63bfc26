package services

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"Huddle/models"
	"Huddle/repositories"
)

type emitted struct {
	Room    string
	Event   string
	Payload interface{}
	Except  string
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []emitted
}

func (b *recordingBroadcaster) Emit(room, event string, payload interface{}) {
	b.EmitExcept(room, event, payload, "")
}

func (b *recordingBroadcaster) EmitExcept(room, event string, payload interface{}, except string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, emitted{Room: room, Event: event, Payload: payload, Except: except})
}

func (b *recordingBroadcaster) find(room, event string) []emitted {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []emitted
	for _, e := range b.events {
		if e.Room == room && e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

type stateKey struct {
	user      string
	container models.ContainerRef
}

// memStore is an in-memory Store. Inserts read MAX and write in two
// separate critical sections so concurrent writers can collide the way
// they do on the real unique index.
type memStore struct {
	mu           sync.Mutex
	messages     map[string]*models.Message
	members      map[models.ContainerRef][]string
	channels     map[string]*models.Channel
	orgMembers   map[string]map[string]bool
	notes        map[string]*models.Note
	states       map[stateKey]models.ReadState
	participants map[[2]string]time.Time
	inserts      int
}

func newMemStore() *memStore {
	return &memStore{
		messages:     make(map[string]*models.Message),
		members:      make(map[models.ContainerRef][]string),
		channels:     make(map[string]*models.Channel),
		orgMembers:   make(map[string]map[string]bool),
		notes:        make(map[string]*models.Note),
		states:       make(map[stateKey]models.ReadState),
		participants: make(map[[2]string]time.Time),
	}
}

func (m *memStore) addChannel(id, org string, private bool, members ...string) models.ContainerRef {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[id] = &models.Channel{ID: id, OrganizationID: org, Name: id, IsPrivate: private}
	ref := models.ChannelRef(id)
	m.members[ref] = append(m.members[ref], members...)
	for _, u := range members {
		m.addOrgMemberLocked(org, u)
	}
	return ref
}

func (m *memStore) addConversation(id string, participants ...string) models.ContainerRef {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := models.ConversationRef(id)
	m.members[ref] = append(m.members[ref], participants...)
	return ref
}

func (m *memStore) addOrgMember(org, user string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addOrgMemberLocked(org, user)
}

func (m *memStore) addOrgMemberLocked(org, user string) {
	if m.orgMembers[org] == nil {
		m.orgMembers[org] = make(map[string]bool)
	}
	m.orgMembers[org][user] = true
}

func (m *memStore) insertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inserts
}

func (m *memStore) message(id string) models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.messages[id]
}

func (m *memStore) state(user string, c models.ContainerRef) (models.ReadState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[stateKey{user, c}]
	return st, ok
}

func (m *memStore) Messages() repositories.MessageRepository { return &memMessages{memTx{store: m}} }
func (m *memStore) Memberships() repositories.MembershipRepository {
	return &memMemberships{memTx{store: m}}
}
func (m *memStore) ReadStates() repositories.ReadStateRepository {
	return &memReadStates{memTx{store: m}}
}
func (m *memStore) ThreadParticipants() repositories.ThreadParticipantRepository {
	return &memParticipants{memTx{store: m}}
}

func (m *memStore) WithinTransaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	tx := &memTx{store: m, undo: new([]func()), tx: true}
	if err := fn(tx); err != nil {
		m.mu.Lock()
		for i := len(*tx.undo) - 1; i >= 0; i-- {
			(*tx.undo)[i]()
		}
		m.mu.Unlock()
		return err
	}
	return nil
}

// memTx is a view of memStore; inside a transaction it records undo steps.
type memTx struct {
	store *memStore
	undo  *[]func()
	tx    bool
}

func (t *memTx) record(fn func()) {
	if t.tx {
		*t.undo = append(*t.undo, fn)
	}
}

func (t *memTx) Messages() repositories.MessageRepository       { return &memMessages{*t} }
func (t *memTx) Memberships() repositories.MembershipRepository { return &memMemberships{*t} }
func (t *memTx) ReadStates() repositories.ReadStateRepository   { return &memReadStates{*t} }
func (t *memTx) ThreadParticipants() repositories.ThreadParticipantRepository {
	return &memParticipants{*t}
}
func (t *memTx) WithinTransaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	return fn(t)
}

type memMessages struct{ memTx }

func (r *memMessages) InsertWithNextSequence(ctx context.Context, msg *models.Message) error {
	m := r.store
	container := msg.Container()

	m.mu.Lock()
	var max int64
	for _, existing := range m.messages {
		if existing.Container() == container && existing.Sequence > max {
			max = existing.Sequence
		}
	}
	m.mu.Unlock()

	runtime.Gosched()

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.messages {
		if existing.Container() == container && existing.Sequence == max+1 {
			return repositories.ErrSequenceConflict
		}
	}
	msg.Sequence = max + 1
	stored := *msg
	m.messages[msg.ID] = &stored
	m.inserts++
	r.record(func() {
		delete(m.messages, stored.ID)
		m.inserts--
	})
	return nil
}

func (r *memMessages) FindByID(ctx context.Context, id string) (*models.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	msg, ok := r.store.messages[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *msg
	return &cp, nil
}

func (r *memMessages) SoftDelete(ctx context.Context, id string, at time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	msg, ok := r.store.messages[id]
	if !ok || msg.DeletedAt != nil {
		return false, nil
	}
	msg.DeletedAt = &at
	return true, nil
}

func (r *memMessages) IncrementReplyCount(ctx context.Context, parentID string, at time.Time) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	msg, ok := r.store.messages[parentID]
	if !ok || msg.DeletedAt != nil || msg.IsReply() {
		return 0, repositories.ErrNotFound
	}
	msg.ReplyCount++
	r.record(func() { msg.ReplyCount-- })
	return msg.ReplyCount, nil
}

func (r *memMessages) ListReplies(ctx context.Context, parentID string, afterSequence int64, limit int) ([]models.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Message
	for _, msg := range r.store.messages {
		if msg.ParentID != nil && *msg.ParentID == parentID && msg.DeletedAt == nil && msg.Sequence > afterSequence {
			out = append(out, *msg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memMessages) LatestSequence(ctx context.Context, container models.ContainerRef) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var max int64
	for _, msg := range r.store.messages {
		if msg.Container() == container && msg.Sequence > max {
			max = msg.Sequence
		}
	}
	return max, nil
}

func (r *memMessages) CountUnreadAfter(ctx context.Context, container models.ContainerRef, afterSequence int64, excludeAuthorID string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for _, msg := range r.store.messages {
		if msg.Container() == container && msg.Sequence > afterSequence && msg.DeletedAt == nil &&
			!msg.IsReply() && msg.AuthorID != excludeAuthorID {
			n++
		}
	}
	return n, nil
}

type memMemberships struct{ memTx }

func (r *memMemberships) contains(c models.ContainerRef, user string) bool {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.members[c] {
		if u == user {
			return true
		}
	}
	return false
}

func (r *memMemberships) IsChannelMember(ctx context.Context, channelID, userID string) (bool, error) {
	return r.contains(models.ChannelRef(channelID), userID), nil
}

func (r *memMemberships) IsConversationParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	return r.contains(models.ConversationRef(conversationID), userID), nil
}

func (r *memMemberships) IsOrganizationMember(ctx context.Context, organizationID, userID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.orgMembers[organizationID][userID], nil
}

func (r *memMemberships) FindChannel(ctx context.Context, channelID string) (*models.Channel, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	ch, ok := r.store.channels[channelID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *ch
	return &cp, nil
}

func (r *memMemberships) FindNote(ctx context.Context, noteID string) (*models.Note, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	note, ok := r.store.notes[noteID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *note
	return &cp, nil
}

func (r *memMemberships) ListMemberIDs(ctx context.Context, container models.ContainerRef) ([]string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return append([]string(nil), r.store.members[container]...), nil
}

type memReadStates struct{ memTx }

// unreadLocked mirrors the SQL recount. Caller holds store.mu.
func (m *memStore) unreadLocked(container models.ContainerRef, cursor int64, user string) int64 {
	var n int64
	for _, msg := range m.messages {
		if msg.Container() == container && msg.Sequence > cursor && msg.DeletedAt == nil &&
			!msg.IsReply() && msg.AuthorID != user {
			n++
		}
	}
	return n
}

func (r *memReadStates) RefreshUnread(ctx context.Context, container models.ContainerRef, userIDs []string) ([]models.ReadState, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.ReadState
	for _, u := range userIDs {
		key := stateKey{u, container}
		st, ok := r.store.states[key]
		if !ok {
			st = models.ReadState{UserID: u, ContainerKind: container.Kind, ContainerID: container.ID}
		}
		st.UnreadCount = r.store.unreadLocked(container, st.LastReadSequence, u)
		r.store.states[key] = st
		out = append(out, st)
	}
	return out, nil
}

func (r *memReadStates) RefreshAfterDelete(ctx context.Context, container models.ContainerRef, sequence int64, authorID string) ([]models.ReadState, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.ReadState
	for key, st := range r.store.states {
		if key.container == container && key.user != authorID && st.LastReadSequence < sequence {
			st.UnreadCount = r.store.unreadLocked(container, st.LastReadSequence, key.user)
			r.store.states[key] = st
			out = append(out, st)
		}
	}
	return out, nil
}

func (r *memReadStates) Save(ctx context.Context, state *models.ReadState) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	state.UnreadCount = r.store.unreadLocked(state.Container(), state.LastReadSequence, state.UserID)
	r.store.states[stateKey{state.UserID, state.Container()}] = *state
	return nil
}

func (r *memReadStates) Find(ctx context.Context, userID string, containers []models.ContainerRef) ([]models.ReadState, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.ReadState
	for _, c := range containers {
		if st, ok := r.store.states[stateKey{userID, c}]; ok {
			out = append(out, st)
		}
	}
	return out, nil
}

type memParticipants struct{ memTx }

func (r *memParticipants) Upsert(ctx context.Context, threadID, userID string, seenAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.participants[[2]string{threadID, userID}] = seenAt
	return nil
}

type harness struct {
	store       *memStore
	broadcaster *recordingBroadcaster
	auth        *AuthorizationService
	unread      *UnreadService
	messages    *MessageService
}

func newHarness() *harness {
	store := newMemStore()
	b := &recordingBroadcaster{}
	auth := NewAuthorizationService(store)
	unread := NewUnreadService(store, auth, b)
	allocator := NewSequenceAllocator(store, DefaultSequenceAttempts, time.Millisecond)
	limiter := NewRateLimiter(DefaultRateLimitMessages, DefaultRateLimitWindow)
	return &harness{
		store:       store,
		broadcaster: b,
		auth:        auth,
		unread:      unread,
		messages:    NewMessageService(store, auth, allocator, limiter, unread, b, models.MaxContentLength),
	}
}
