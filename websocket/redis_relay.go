package websocket

import (
	"context"
	"encoding/json"

	"Huddle/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultRelayChannel = "huddle:rooms"

type relayEnvelope struct {
	Node   string `json:"node"`
	Room   string `json:"room"`
	Except string `json:"except,omitempty"`
	Data   []byte `json:"data"`
}

// RedisRelay fans room frames out to every instance subscribed to the same
// pub/sub channel. Each instance delivers its own frames locally and skips
// them when they come back.
type RedisRelay struct {
	NodeID  string
	Channel string

	client *redis.Client
	hub    *Hub
}

func NewRedisRelay(client *redis.Client, hub *Hub) *RedisRelay {
	return &RedisRelay{
		NodeID:  uuid.NewString(),
		Channel: DefaultRelayChannel,
		client:  client,
		hub:     hub,
	}
}

func (r *RedisRelay) Publish(ctx context.Context, msg *Message) error {
	if msg.Client != nil {
		return nil
	}
	payload, err := json.Marshal(relayEnvelope{Node: r.NodeID, Room: msg.Room, Except: msg.Except, Data: msg.Data})
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.Channel, payload).Err()
}

// Run consumes frames from other instances until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) {
	sub := r.client.Subscribe(ctx, r.Channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			r.handle(m.Payload)
		}
	}
}

func (r *RedisRelay) handle(payload string) {
	var env relayEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		logger.Warn("bad relay frame", "error", err)
		return
	}
	if env.Node == r.NodeID || env.Room == "" {
		return
	}
	r.hub.DeliverLocal(env.Room, env.Except, env.Data)
}
