package controllers

import (
	"Huddle/websocket"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
)

type WebSocketController struct {
	hub             *websocket.Hub
	dispatcher      *websocket.Dispatcher
	upgrader        *gorilla.Upgrader
	eventsPerSecond int
}

func NewWebSocketController(hub *websocket.Hub, dispatcher *websocket.Dispatcher, upgrader *gorilla.Upgrader, eventsPerSecond int) *WebSocketController {
	return &WebSocketController{
		hub:             hub,
		dispatcher:      dispatcher,
		upgrader:        upgrader,
		eventsPerSecond: eventsPerSecond,
	}
}

// ServeWs upgrades GET /ws for the authenticated user.
func (wc *WebSocketController) ServeWs(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	websocket.Serve(wc.hub, wc.dispatcher, wc.upgrader, c.Writer, c.Request, userID, wc.eventsPerSecond)
}
