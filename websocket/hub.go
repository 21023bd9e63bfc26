package websocket

import (
	"context"
	"encoding/json"

	"Huddle/logger"
	"Huddle/metrics"
	"Huddle/rooms"
)

// Message is an encoded frame bound for a room, or for one client when
// Client is set.
type Message struct {
	Room   string
	Except string
	Client *Client
	Data   []byte
}

type roomRequest struct {
	client *Client
	room   string
	join   bool
}

// Relay forwards room messages to other instances.
type Relay interface {
	Publish(ctx context.Context, msg *Message) error
}

// Hub owns every room and client map. All mutations and deliveries go
// through Run, so frames for one room leave in the order they were queued.
type Hub struct {
	clients     map[*Client]bool
	rooms       map[string]map[*Client]bool
	clientRooms map[*Client]map[string]bool

	register   chan *Client
	unregister chan *Client
	membership chan *roomRequest
	outbound   chan *Message
	stats      chan chan hubStats
	done       chan struct{}

	relay Relay
}

type hubStats struct {
	clients int
	rooms   map[string]int
}

func NewHub() *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		rooms:       make(map[string]map[*Client]bool),
		clientRooms: make(map[*Client]map[string]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		membership:  make(chan *roomRequest),
		outbound:    make(chan *Message, 256),
		stats:       make(chan chan hubStats),
		done:        make(chan struct{}),
	}
}

// SetRelay must be called before Run.
func (h *Hub) SetRelay(r Relay) {
	h.relay = r
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.clientRooms[client] = make(map[string]bool)
			h.add(client, rooms.ForUser(client.UserID))
			metrics.ConnectedSockets.Inc()
			logger.Debug("client registered", "client", client.ID, "user", client.UserID)

		case client := <-h.unregister:
			if h.clients[client] {
				h.drop(client)
				logger.Debug("client unregistered", "client", client.ID, "user", client.UserID)
			}

		case req := <-h.membership:
			if !h.clients[req.client] {
				continue
			}
			if req.join {
				h.add(req.client, req.room)
			} else {
				h.remove(req.client, req.room)
			}

		case msg := <-h.outbound:
			h.deliver(msg)

		case reply := <-h.stats:
			s := hubStats{clients: len(h.clients), rooms: make(map[string]int, len(h.rooms))}
			for name, members := range h.rooms {
				s.rooms[name] = len(members)
			}
			reply <- s
		}
	}
}

func (h *Hub) add(client *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]bool)
		h.rooms[room] = members
	}
	members[client] = true
	h.clientRooms[client][room] = true
}

func (h *Hub) remove(client *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.clientRooms[client], room)
}

// drop forgets a client everywhere and closes its send channel, which ends
// its WritePump.
func (h *Hub) drop(client *Client) {
	for room := range h.clientRooms[client] {
		h.remove(client, room)
	}
	delete(h.clientRooms, client)
	delete(h.clients, client)
	close(client.send)
	metrics.ConnectedSockets.Dec()
}

func (h *Hub) deliver(msg *Message) {
	if msg.Client != nil {
		if h.clients[msg.Client] {
			h.push(msg.Client, msg.Data)
		}
		return
	}
	for client := range h.rooms[msg.Room] {
		if msg.Except != "" && client.ID == msg.Except {
			continue
		}
		h.push(client, msg.Data)
	}
}

// push never blocks the loop; a client that cannot keep up is disconnected.
func (h *Hub) push(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		logger.Warn("client send buffer full, dropping", "client", client.ID, "user", client.UserID)
		h.drop(client)
	}
}

func (h *Hub) enqueue(msg *Message) {
	select {
	case h.outbound <- msg:
	case <-h.done:
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Join adds the client to room. It does not authorize; see Router.
func (h *Hub) Join(client *Client, room string) {
	select {
	case h.membership <- &roomRequest{client: client, room: room, join: true}:
	case <-h.done:
	}
}

func (h *Hub) Leave(client *Client, room string) {
	select {
	case h.membership <- &roomRequest{client: client, room: room}:
	case <-h.done:
	}
}

func (h *Hub) Emit(room, event string, payload interface{}) {
	h.EmitExcept(room, event, payload, "")
}

// EmitExcept sends event to room, skipping the socket exceptClientID.
func (h *Hub) EmitExcept(room, event string, payload interface{}, exceptClientID string) {
	data, err := json.Marshal(Outbound{Event: event, Data: payload})
	if err != nil {
		logger.Error("failed to encode event", "event", event, "error", err)
		return
	}
	msg := &Message{Room: room, Except: exceptClientID, Data: data}
	h.enqueue(msg)

	if h.relay != nil {
		if err := h.relay.Publish(context.Background(), msg); err != nil {
			logger.Warn("relay publish failed", "room", room, "error", err)
		}
	}
}

// DeliverLocal queues a frame received from another instance.
func (h *Hub) DeliverLocal(room, except string, data []byte) {
	h.enqueue(&Message{Room: room, Except: except, Data: data})
}

// SendTo queues a frame for one client.
func (h *Hub) SendTo(client *Client, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("failed to encode frame", "client", client.ID, "error", err)
		return
	}
	h.enqueue(&Message{Client: client, Data: data})
}

func (h *Hub) snapshot() hubStats {
	reply := make(chan hubStats, 1)
	select {
	case h.stats <- reply:
		return <-reply
	case <-h.done:
		return hubStats{}
	}
}

// ClientCount is the number of registered sockets.
func (h *Hub) ClientCount() int {
	return h.snapshot().clients
}

// RoomSize is the number of sockets currently in room.
func (h *Hub) RoomSize(room string) int {
	return h.snapshot().rooms[room]
}
