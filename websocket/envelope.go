package websocket

import (
	"encoding/json"

	"Huddle/apperrors"
)

const EventAck = "ack"

// Inbound is what clients send: {event, ackId?, data}.
type Inbound struct {
	Event string          `json:"event"`
	AckID json.RawMessage `json:"ackId,omitempty"`
	Data  json.RawMessage `json:"data"`
}

func (in Inbound) WantsAck() bool {
	return len(in.AckID) > 0 && string(in.AckID) != "null"
}

type Outbound struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

type AckError struct {
	Code       apperrors.Code `json:"code"`
	Message    string         `json:"message"`
	RetryAfter int            `json:"retryAfter,omitempty"`
}

type Ack struct {
	Event string          `json:"event"`
	AckID json.RawMessage `json:"ackId"`
	OK    bool            `json:"ok"`
	Data  interface{}     `json:"data,omitempty"`
	Error *AckError       `json:"error,omitempty"`
}

func NewAckError(err error) *AckError {
	appErr := apperrors.From(err)
	if appErr == nil {
		return nil
	}
	return &AckError{
		Code:       appErr.Code,
		Message:    appErr.Message,
		RetryAfter: appErr.RetryAfterSeconds(),
	}
}

func NewAck(id json.RawMessage, data interface{}, err error) Ack {
	if err != nil {
		return Ack{Event: EventAck, AckID: id, OK: false, Error: NewAckError(err)}
	}
	return Ack{Event: EventAck, AckID: id, OK: true, Data: data}
}

// ErrorEvent is the payload of an "error" event. Event names the inbound
// event that failed, Scope the room a refused subscription targeted.
type ErrorEvent struct {
	Event      string         `json:"event,omitempty"`
	Scope      string         `json:"scope,omitempty"`
	Code       apperrors.Code `json:"code"`
	Message    string         `json:"message"`
	RetryAfter int            `json:"retryAfter,omitempty"`
}

func NewErrorEvent(event string, err error) ErrorEvent {
	appErr := apperrors.From(err)
	return ErrorEvent{
		Event:      event,
		Code:       appErr.Code,
		Message:    appErr.Message,
		RetryAfter: appErr.RetryAfterSeconds(),
	}
}
