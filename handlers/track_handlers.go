package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tharo/api/analytics"
	"tharo/api/metrics"
	"tharo/api/models"
	"tharo/api/store"
	"tharo/api/utils"
)

type TrackHandlers struct {
	EventStore store.EventStore
	Metrics    *metrics.TrackingMetrics

	// Now is the ingestion clock; tests pin it.
	Now func() time.Time
}

func NewTrackHandlers(s store.EventStore, m *metrics.TrackingMetrics) *TrackHandlers {
	return &TrackHandlers{
		EventStore: s,
		Metrics:    m,
		Now:        time.Now,
	}
}

// TrackEvent ingests one event: validate, bot-filter, attribute the
// channel, stamp server-side identity, append. Bot traffic gets the same
// success response as real traffic but is never persisted.
func (h *TrackHandlers) TrackEvent(c *gin.Context) {
	var req models.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Metrics.EventsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.SessionID == "" || req.EventType == "" || req.URL == "" {
		h.Metrics.EventsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: sessionId, eventType, url"})
		return
	}
	if !models.ValidEventType(req.EventType) {
		h.Metrics.EventsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown eventType"})
		return
	}

	userAgent := c.GetHeader("User-Agent")
	if analytics.IsBot(userAgent) {
		// Silently drop bot traffic; the response is indistinguishable
		// from a real accept so scrapers can't detect the filter.
		h.Metrics.EventsTotal.WithLabelValues("filtered").Inc()
		c.JSON(http.StatusOK, gin.H{"success": true, "filtered": true})
		return
	}

	now := h.Now()
	event := models.AnalyticsEvent{
		Version:   models.EventSchemaVersion,
		ID:        utils.NewID(now),
		SessionID: req.SessionID,
		EventType: req.EventType,
		URL:       req.URL,
		Referrer:  req.Referrer,
		Timestamp: now,
		Channel:   analytics.DetectChannel(req.Referrer),
		ProductID: req.ProductID,
		UserAgent: userAgent,
		IP:        utils.ClientIPFromHeaders(c.GetHeader("X-Forwarded-For"), c.GetHeader("X-Real-IP")),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if err := h.EventStore.Append(ctx, event); err != nil {
		log.Printf("Error appending analytics event: %v", err)
		h.Metrics.EventsTotal.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to track event"})
		return
	}

	h.Metrics.EventsTotal.WithLabelValues("accepted").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "eventId": event.ID})
}
