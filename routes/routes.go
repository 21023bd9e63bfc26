package routes

import (
	"Huddle/controllers"
	"Huddle/metrics"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Messages  *controllers.MessageController
	Unread    *controllers.UnreadController
	WebSocket *controllers.WebSocketController
	Health    *controllers.HealthController
}

func RegisterRoutes(r *gin.Engine, h Handlers, auth gin.HandlerFunc) {
	// Public routes
	r.GET("/healthz", h.Health.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.GET("/ws", auth, h.WebSocket.ServeWs)

	// Protected routes
	api := r.Group("/api")
	api.Use(auth)
	{
		api.POST("/messages", h.Messages.Send)
		api.DELETE("/messages/:message_id", h.Messages.Delete)
		api.GET("/threads/:parent_id/replies", h.Messages.Replies)
		api.POST("/unread/fetch", h.Unread.Fetch)
	}
}
