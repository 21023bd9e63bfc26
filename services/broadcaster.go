package services

// Broadcaster delivers an event to every socket in a room. It never
// authorizes; callers check the gate before emitting.
type Broadcaster interface {
	Emit(room, event string, payload interface{})
	EmitExcept(room, event string, payload interface{}, exceptClientID string)
}

// Session identifies one authenticated socket.
type Session struct {
	UserID   string
	ClientID string
}
