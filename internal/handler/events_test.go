package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/psds-microservice/support-console/internal/model"
	"github.com/psds-microservice/support-console/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsStreamDeliversStoreEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := store.NewTicketStore(nil)
	h := NewEventsHandler(st, nil, nil)
	r := gin.New()
	r.GET("/events", h.Stream)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/events", nil)
	require.NoError(t, err)
	defer conn.Close()

	// The subscription is registered after the upgrade; keep emitting until
	// the first event gets through.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-time.After(10 * time.Millisecond):
				st.ReplaceTickets([]model.Ticket{{ID: "t1"}})
			}
		}
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var e store.Event
	require.NoError(t, conn.ReadJSON(&e))
	assert.Equal(t, store.EventTicketsReplaced, e.Type)
	assert.Equal(t, 1, e.Count)
}

func TestEventsRejectsForeignOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewEventsHandler(store.NewTicketStore(nil), []string{"http://console.local"}, nil)
	r := gin.New()
	r.GET("/events", h.Stream)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"
	_, resp, err := websocket.DefaultDialer.Dial(url, map[string][]string{"Origin": {"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, map[string][]string{"Origin": {"http://console.local"}})
	require.NoError(t, err)
	conn.Close()
}

func TestEventsAcceptsSameOriginOverHTTPS(t *testing.T) {
	h := NewEventsHandler(store.NewTicketStore(nil), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "https://console.example/api/v1/events", nil)
	req.Host = "console.example"
	req.Header.Set("Origin", "https://console.example")
	assert.True(t, h.upgrader.CheckOrigin(req))

	req.Header.Set("Origin", "https://other.example")
	assert.False(t, h.upgrader.CheckOrigin(req))

	req.Header.Set("Origin", "null")
	assert.False(t, h.upgrader.CheckOrigin(req))
}
