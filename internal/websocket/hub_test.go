package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"freightdesk/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHub(t *testing.T) (*Hub, *auth.Issuer, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	issuer := auth.NewIssuer([]byte("secret"), time.Hour)
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", ServeWs(hub, issuer))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, issuer, srv
}

func TestServeWsRejectsMissingToken(t *testing.T) {
	_, _, srv := startHub(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPublishReachesClient(t *testing.T) {
	hub, issuer, srv := startHub(t)
	token, err := issuer.Issue(uuid.New(), "staff")
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// registration is asynchronous; publish until the frame arrives
	received := make(chan Event, 1)
	go func() {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var ev Event
		if json.Unmarshal(payload, &ev) == nil {
			received <- ev
		}
	}()

	deadline := time.After(2 * time.Second)
	for {
		hub.Publish(EventOrderCreated, map[string]string{"refNumber": "PO-1"})
		select {
		case ev := <-received:
			assert.Equal(t, EventOrderCreated, ev.Type)
			assert.Equal(t, map[string]interface{}{"refNumber": "PO-1"}, ev.Data)
			return
		case <-deadline:
			t.Fatal("no event received")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestStoppedHubDoesNotBlock(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := auth.NewIssuer([]byte("secret"), time.Hour)
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	left := make(chan struct{})
	go func() {
		hub.leave(&Client{hub: hub})
		close(left)
	}()
	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("leave blocked after Run returned")
	}

	r := gin.New()
	r.GET("/ws", ServeWs(hub, issuer))
	srv := httptest.NewServer(r)
	defer srv.Close()

	token, err := issuer.Issue(uuid.New(), "staff")
	require.NoError(t, err)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// the server closes the connection instead of waiting on a dead hub
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
