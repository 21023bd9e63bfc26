package websocket

import (
	"context"
	"encoding/json"
	"time"

	"Huddle/apperrors"
	"Huddle/logger"
	"Huddle/metrics"
	"Huddle/models"
	"Huddle/rooms"
	"Huddle/services"
)

// Inbound event names.
const (
	EventMessageSend      = "message:send"
	EventMessageDelete    = "message:delete"
	EventThreadReply      = "thread:reply"
	EventThreadJoin       = "thread:join"
	EventThreadLeave      = "thread:leave"
	EventThreadGetReplies = "thread:getReplies"
	EventRoomSubscribe    = "room:subscribe"
	EventRoomUnsubscribe  = "room:unsubscribe"
	EventUnreadFetch      = "unread:fetch"
	EventUnreadMarkRead   = "unread:markRead"
	EventUnreadMarkUnread = "unread:markMessageUnread"
	EventTypingStart      = "typing:start"
	EventTypingStop       = "typing:stop"
	EventPresenceUpdate   = "presence:update"
	EventNoteSubscribe    = "note:subscribe"
	EventNoteUnsubscribe  = "note:unsubscribe"
	EventNoteBroadcast    = "note:broadcast"
)

const DefaultEventTimeout = 10 * time.Second

const (
	outcomeOK   = "ok"
	outcomeFail = "error"
)

// HandlerFunc serves one inbound event. The returned value becomes the ack
// data.
type HandlerFunc func(ctx context.Context, c *Client, data json.RawMessage) (interface{}, error)

// Services are the domain handlers the dispatcher routes to.
type Services struct {
	Messages *services.MessageService
	Unread   *services.UnreadService
	Presence *services.PresenceService
	Notes    *services.NoteService
	Router   *Router
}

type Dispatcher struct {
	Timeout time.Duration

	svc      Services
	handlers map[string]HandlerFunc
}

func NewDispatcher(svc Services, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultEventTimeout
	}
	d := &Dispatcher{Timeout: timeout, svc: svc}
	d.handlers = map[string]HandlerFunc{
		EventMessageSend:      d.messageSend,
		EventMessageDelete:    d.messageDelete,
		EventThreadReply:      d.threadReply,
		EventThreadJoin:       d.threadJoin,
		EventThreadLeave:      d.threadLeave,
		EventThreadGetReplies: d.threadGetReplies,
		EventRoomSubscribe:    d.roomSubscribe,
		EventRoomUnsubscribe:  d.roomUnsubscribe,
		EventUnreadFetch:      d.unreadFetch,
		EventUnreadMarkRead:   d.unreadMarkRead,
		EventUnreadMarkUnread: d.unreadMarkUnread,
		EventTypingStart:      d.typingStart,
		EventTypingStop:       d.typingStop,
		EventPresenceUpdate:   d.presenceUpdate,
		EventNoteSubscribe:    d.noteSubscribe,
		EventNoteUnsubscribe:  d.noteUnsubscribe,
		EventNoteBroadcast:    d.noteBroadcast,
	}
	return d
}

// Dispatch runs the handler for in and answers it exactly once.
func (d *Dispatcher) Dispatch(c *Client, in Inbound) {
	handler, ok := d.handlers[in.Event]
	if !ok {
		metrics.SocketEvents.WithLabelValues("unknown", outcomeFail).Inc()
		c.reply(in, nil, apperrors.ErrUnknownEvent(in.Event))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.Timeout)
	defer cancel()

	data, err := d.safeCall(ctx, handler, c, in)
	if err != nil {
		appErr := apperrors.From(err)
		if appErr.Code == apperrors.CodeInternal {
			logger.Error("event failed", "event", in.Event, "user", c.UserID, "error", err)
		} else {
			logger.Debug("event rejected", "event", in.Event, "user", c.UserID, "code", appErr.Code)
		}
		metrics.SocketEvents.WithLabelValues(in.Event, outcomeFail).Inc()
	} else {
		metrics.SocketEvents.WithLabelValues(in.Event, outcomeOK).Inc()
	}
	c.reply(in, data, err)
}

func (d *Dispatcher) safeCall(ctx context.Context, handler HandlerFunc, c *Client, in Inbound) (data interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in event handler", "event", in.Event, "panic", r)
			data, err = nil, apperrors.New(apperrors.CodeInternal, "internal error")
		}
	}()
	return handler(ctx, c, in.Data)
}

// Connect and Disconnect keep presence in step with the socket lifecycle.
func (d *Dispatcher) Connect(c *Client) {
	if d.svc.Presence != nil {
		d.svc.Presence.Connect(c.Session())
	}
}

func (d *Dispatcher) Disconnect(c *Client) {
	if d.svc.Presence != nil {
		d.svc.Presence.Disconnect(c.Session())
	}
}

func decode(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return apperrors.InvalidPayload("data is required")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperrors.InvalidPayload("malformed payload: " + err.Error())
	}
	return nil
}

func success() map[string]bool {
	return map[string]bool{"success": true}
}

func (d *Dispatcher) messageSend(ctx context.Context, c *Client, data json.RawMessage) (interface{}, error) {
	var p SendPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	in := services.SendInput{Content: p.Content, ParentID: p.ParentID}
	if p.ContainerRef != nil {
		in.Container = *p.ContainerRef
	}
	msg, err := d.svc.Messages.Send(ctx, c.UserID, in)
	if err != nil {
		return nil, err
	}
	return map[string]*models.Message{"message": msg}, nil
}

func (d *Dispatcher) messageDelete(ctx context.Context, c *Client, data json.RawMessage) (interface{}, error) {
	var p DeletePayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	if err := d.svc.Messages.Delete(ctx, c.UserID, p.MessageID, p.ContainerRef); err != nil {
		return nil, err
	}
	return success(), nil
}

func (d *Dispatcher) threadReply(ctx context.Context, c *Client, data json.RawMessage) (interface{}, error) {
	var p ReplyPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	reply, err := d.svc.Messages.Reply(ctx, c.UserID, p.ParentID, p.Content)
	if err != nil {
		return nil, err
	}
	return map[string]*models.Message{"reply": reply}, nil
}

func (d *Dispatcher) threadJoin(ctx context.Context, c *Client, data json.RawMessage) (interface{}, error) {
	var p ThreadPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	if _, err := d.svc.Router.Subscribe(ctx, c, rooms.Scope{Kind: rooms.Thread, ID: p.ParentID}); err != nil {
		return nil, err
	}
	return success(), nil
}

func (d *Dispatcher) threadLeave(ctx context.Context, c *Client, data json.RawMessage) (interface{}, error) {
	var p ThreadPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	if _, err := d.svc.Router.Unsubscribe(c, rooms.Scope{Kind: rooms.Thread, ID: p.ParentID}); err != nil {
		return nil, err
	}
	return success(), nil
}

func (d *Dispatcher) threadGetReplies(ctx context.Context, c *Client, data json.RawMessage) (interface{}, error) {
	var p RepliesPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	replies, err := d.svc.Messages.GetReplies(ctx, c.UserID, p.ParentID, p.AfterSequence, p.Limit)
	if err != nil {
		return nil, err
	}
	return map[string][]models.Message{"replies": replies}, nil
}

func (d *Dispatcher) roomSubscribe(ctx context.Context, c *Client, data json.RawMessage) (interface{}, error) {
	var scope rooms.Scope
	if err := decode(data, &scope); err != nil {
		return nil, err
	}
	room, err := d.svc.Router.Subscribe(ctx, c, scope)
	if err != nil {
		return nil, err
	}
	return map[string]string{"room": room}, nil
}

func (d *Dispatcher) roomUnsubscribe(ctx context.Context, c *Client, data json.RawMessage) (interface{}, error) {
	var scope rooms.Scope
	if err := decode(data, &scope); err != nil {
		return nil, err
	}
	room, err := d.svc.Router.Unsubscribe(c, scope)
	if err != nil {
		return nil, err
	}
	return map[string]string{"room": room}, nil
}

func (d *Dispatcher) unreadFetch(ctx context.Context, c *Client, data json.RawMessage) (interface{}, error) {
	var p FetchUnreadPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	return d.svc.Unread.Fetch(ctx, c.UserID, p.ChannelIDs, p.ConversationIDs)
}

func (d *Dispatcher) unreadMarkRead(ctx context.Context, c *Client, data json.RawMessage) (interface{}, error) {
	var p MarkReadPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	state, err := d.svc.Unread.MarkRead(ctx, c.UserID, p.ContainerRef, p.MessageID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true, "state": services.NewUnreadUpdate(*state)}, nil
}

func (d *Dispatcher) unreadMarkUnread(ctx context.Context, c *Client, data json.RawMessage) (interface{}, error) {
	var p MarkUnreadPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	state, err := d.svc.Unread.MarkMessageUnread(ctx, c.UserID, p.MessageID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true, "state": services.NewUnreadUpdate(*state)}, nil
}

func (d *Dispatcher) typingStart(ctx context.Context, c *Client, data json.RawMessage) (interface{}, error) {
	var p TypingPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	return nil, d.svc.Presence.TypingStart(ctx, c.Session(), p.Container())
}

func (d *Dispatcher) typingStop(ctx context.Context, c *Client, data json.RawMessage) (interface{}, error) {
	var p TypingPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	return nil, d.svc.Presence.TypingStop(ctx, c.Session(), p.Container())
}

func (d *Dispatcher) presenceUpdate(ctx context.Context, c *Client, data json.RawMessage) (interface{}, error) {
	var p PresencePayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	return nil, d.svc.Presence.UpdatePresence(ctx, c.Session(), p.OrganizationID, p.Status)
}

func (d *Dispatcher) noteSubscribe(ctx context.Context, c *Client, data json.RawMessage) (interface{}, error) {
	var p NotePayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	if err := d.svc.Notes.Authorize(ctx, c.UserID, p.NoteID); err != nil {
		return nil, err
	}
	room, err := d.svc.Router.Subscribe(ctx, c, rooms.Scope{Kind: rooms.Note, ID: p.NoteID})
	if err != nil {
		return nil, err
	}
	return map[string]string{"room": room}, nil
}

func (d *Dispatcher) noteUnsubscribe(ctx context.Context, c *Client, data json.RawMessage) (interface{}, error) {
	var p NotePayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	room, err := d.svc.Router.Unsubscribe(c, rooms.Scope{Kind: rooms.Note, ID: p.NoteID})
	if err != nil {
		return nil, err
	}
	return map[string]string{"room": room}, nil
}

func (d *Dispatcher) noteBroadcast(ctx context.Context, c *Client, data json.RawMessage) (interface{}, error) {
	var p NotePayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	return nil, d.svc.Notes.Broadcast(ctx, c.Session(), p.NoteID, p.Update)
}
