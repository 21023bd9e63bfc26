package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"Huddle/controllers"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func denyAll(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

func TestRegisterRoutes_ProtectsAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, Handlers{
		Messages:  controllers.NewMessageController(nil),
		Unread:    controllers.NewUnreadController(nil),
		WebSocket: controllers.NewWebSocketController(nil, nil, nil, 0),
		Health:    controllers.NewHealthController(okPinger{}, func() int { return 0 }),
	}, denyAll)

	protected := []struct{ method, path string }{
		{http.MethodPost, "/api/messages"},
		{http.MethodDelete, "/api/messages/m1"},
		{http.MethodGet, "/api/threads/p1/replies"},
		{http.MethodPost, "/api/unread/fetch"},
		{http.MethodGet, "/ws"},
	}
	for _, p := range protected {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(p.method, p.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, p.path)
	}

	for _, path := range []string{"/healthz", "/metrics"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
