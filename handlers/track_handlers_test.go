package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tharo/api/metrics"
	"tharo/api/models"
	"tharo/api/store"
)

const realBrowserUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"

var handlerNow = time.Date(2024, 5, 16, 12, 0, 0, 0, time.UTC)

func newTrackFixture(t *testing.T) (*gin.Engine, *store.FileEventStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	eventStore, err := store.NewFileEventStore(filepath.Join(t.TempDir(), "events.jsonl"), 100)
	require.NoError(t, err)
	t.Cleanup(func() { eventStore.Close() })

	h := NewTrackHandlers(eventStore, metrics.NewTrackingMetrics(prometheus.NewRegistry()))
	h.Now = func() time.Time { return handlerNow }

	r := gin.New()
	r.POST("/api/track", h.TrackEvent)
	return r, eventStore
}

func postTrack(r *gin.Engine, body, userAgent string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/track", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTrackEventAppendsWithServerIdentity(t *testing.T) {
	r, eventStore := newTrackFixture(t)

	// The client-supplied timestamp and id must be ignored entirely.
	body := `{
		"sessionId": "sess-1",
		"eventType": "product_view",
		"url": "https://tharo.example.com/products/linen-ao-dai",
		"referrer": "https://www.facebook.com/tharo",
		"productId": "p1",
		"id": "client-forged-id",
		"timestamp": "1999-01-01T00:00:00Z"
	}`
	w := postTrack(r, body, realBrowserUA, map[string]string{
		"X-Forwarded-For": "203.0.113.9, 10.0.0.1",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.NotEmpty(t, resp["eventId"])

	events, err := eventStore.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	assert.Equal(t, resp["eventId"], e.ID)
	assert.NotEqual(t, "client-forged-id", e.ID)
	assert.True(t, e.Timestamp.Equal(handlerNow), "timestamp must be server-assigned")
	assert.Equal(t, "sess-1", e.SessionID)
	assert.Equal(t, models.EventTypeProductView, e.EventType)
	assert.Equal(t, "p1", e.ProductID)
	assert.Equal(t, "facebook", e.Channel)
	assert.Equal(t, "203.0.113.9", e.IP, "first forwarded-for entry wins")
	assert.Equal(t, realBrowserUA, e.UserAgent)
}

func TestTrackEventMissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing sessionId", `{"eventType":"page_view","url":"/"}`},
		{"missing eventType", `{"sessionId":"s","url":"/"}`},
		{"missing url", `{"sessionId":"s","eventType":"page_view"}`},
		{"not json", `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, eventStore := newTrackFixture(t)
			w := postTrack(r, tt.body, realBrowserUA, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			events, err := eventStore.ReadAll(context.Background())
			require.NoError(t, err)
			assert.Empty(t, events, "a rejected request must have no side effects")
		})
	}
}

func TestTrackEventUnknownEventType(t *testing.T) {
	r, eventStore := newTrackFixture(t)
	w := postTrack(r, `{"sessionId":"s","eventType":"add_to_cart","url":"/"}`, realBrowserUA, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	events, _ := eventStore.ReadAll(context.Background())
	assert.Empty(t, events)
}

func TestTrackEventBotTrafficSilentlyDropped(t *testing.T) {
	botAgents := []string{
		"Mozilla/5.0 (compatible; Googlebot/2.1)",
		"BINGBOT/2.0",
		"my-crawl-agent",
		"HeadlessChrome/120.0",
	}

	for _, ua := range botAgents {
		t.Run(ua, func(t *testing.T) {
			r, eventStore := newTrackFixture(t)
			w := postTrack(r, `{"sessionId":"s","eventType":"page_view","url":"/"}`, ua, nil)

			// The caller sees plain success, with no hint of filtering
			// beyond the flag.
			require.Equal(t, http.StatusOK, w.Code)
			var resp map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, true, resp["success"])
			assert.Equal(t, true, resp["filtered"])

			events, err := eventStore.ReadAll(context.Background())
			require.NoError(t, err)
			assert.Empty(t, events, "bot traffic must never be persisted")
		})
	}
}

func TestTrackEventDirectTrafficNoReferrer(t *testing.T) {
	r, eventStore := newTrackFixture(t)
	w := postTrack(r, `{"sessionId":"s","eventType":"page_view","url":"/"}`, realBrowserUA, nil)

	require.Equal(t, http.StatusOK, w.Code)
	events, err := eventStore.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "direct", events[0].Channel)
	assert.Equal(t, "unknown", events[0].IP)
}
