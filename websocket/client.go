package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"Huddle/apperrors"
	"Huddle/logger"
	"Huddle/services"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait = 10 * time.Second

	pongWait = 60 * time.Second

	// must be shorter than pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 1024 * 64

	sendBuffer = 256

	DefaultEventsPerSecond = 20
)

// NewUpgrader accepts any origin when allowed is empty or contains "*".
func NewUpgrader(allowed []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowed) == 0 {
				return true
			}
			for _, o := range allowed {
				if o == "*" || o == origin {
					return true
				}
			}
			return false
		},
	}
}

// Client is one authenticated websocket connection.
type Client struct {
	ID     string
	UserID string

	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	limiter    *rate.Limiter
	dispatcher *Dispatcher
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string, dispatcher *Dispatcher, eventsPerSecond int) *Client {
	if eventsPerSecond <= 0 {
		eventsPerSecond = DefaultEventsPerSecond
	}
	return &Client{
		ID:         uuid.NewString(),
		UserID:     userID,
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBuffer),
		limiter:    rate.NewLimiter(rate.Limit(eventsPerSecond), eventsPerSecond),
		dispatcher: dispatcher,
	}
}

func (c *Client) Session() services.Session {
	return services.Session{UserID: c.UserID, ClientID: c.ID}
}

// ReadPump decodes inbound envelopes and dispatches them one at a time.
func (c *Client) ReadPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in read pump", "client", c.ID, "panic", r)
		}
		c.dispatcher.Disconnect(c)
		c.hub.Unregister(c)
		c.conn.Close()
		logger.Debug("connection closed", "client", c.ID, "user", c.UserID)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("unexpected close", "client", c.ID, "error", err)
			}
			return
		}
		c.handleFrame(raw)
	}
}

func (c *Client) handleFrame(raw []byte) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil || in.Event == "" {
		c.hub.SendTo(c, Outbound{Event: services.EventError, Data: NewErrorEvent("", apperrors.InvalidPayload("malformed envelope"))})
		return
	}

	if !c.limiter.Allow() {
		c.reply(in, nil, apperrors.RateLimited(time.Second))
		return
	}

	c.dispatcher.Dispatch(c, in)
}

// reply answers an event exactly once when the client asked for an ack.
// Errors on events without an ack id surface as error events instead.
func (c *Client) reply(in Inbound, data interface{}, err error) {
	if in.WantsAck() {
		c.hub.SendTo(c, NewAck(in.AckID, data, err))
		return
	}
	if err != nil {
		c.hub.SendTo(c, Outbound{Event: services.EventError, Data: NewErrorEvent(in.Event, err)})
	}
}

// WritePump writes queued frames and pings until the hub closes send.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logger.Warn("write failed", "client", c.ID, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Debug("ping failed", "client", c.ID, "error", err)
				return
			}
		}
	}
}

// Serve upgrades the request and starts the pumps for an authenticated user.
func Serve(hub *Hub, dispatcher *Dispatcher, upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request, userID string, eventsPerSecond int) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "user", userID, "error", err)
		return
	}

	client := NewClient(hub, conn, userID, dispatcher, eventsPerSecond)
	hub.Register(client)
	dispatcher.Connect(client)
	logger.Info("client connected", "client", client.ID, "user", userID)

	go client.WritePump()
	go client.ReadPump()
}
