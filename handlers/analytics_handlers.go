package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tharo/api/analytics"
	"tharo/api/metrics"
	"tharo/api/models"
	"tharo/api/store"
	"tharo/api/utils"
)

type AnalyticsHandlers struct {
	EventStore store.EventStore
	Catalog    store.ProductCatalog
	Metrics    *metrics.TrackingMetrics

	Now func() time.Time
}

func NewAnalyticsHandlers(s store.EventStore, catalog store.ProductCatalog, m *metrics.TrackingMetrics) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		EventStore: s,
		Catalog:    catalog,
		Metrics:    m,
		Now:        time.Now,
	}
}

// readHistory loads the full event history, failing open: a store read
// problem degrades to an empty report instead of a 500. Reporting must
// never be the thing that breaks.
func (h *AnalyticsHandlers) readHistory(ctx context.Context) []models.AnalyticsEvent {
	events, err := h.EventStore.ReadAll(ctx)
	if err != nil {
		log.Printf("Error reading event history, reporting on empty set: %v", err)
		return []models.AnalyticsEvent{}
	}
	h.Metrics.StoreSize.Set(float64(len(events)))
	return events
}

// GetRealtime recomputes the full dashboard snapshot from the raw history
// on every call; there are no cached rollups to invalidate.
func (h *AnalyticsHandlers) GetRealtime(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	events := h.readHistory(ctx)
	snapshot := analytics.BuildRealtimeSnapshot(events, h.Now())

	h.Metrics.ReportsTotal.WithLabelValues("realtime").Inc()
	c.JSON(http.StatusOK, snapshot)
}

// GetTopProducts ranks product views over a named date range and enriches
// the ranking from the catalog.
func (h *AnalyticsHandlers) GetTopProducts(c *gin.Context) {
	rangeName := c.DefaultQuery("range", "week")
	if !utils.IsValidRange(rangeName) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'range' parameter. Must be one of: today, week, month, year, all."})
		return
	}

	limit := 10
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter. Must be a positive integer."})
			return
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	events := h.readHistory(ctx)
	start, end, _ := analytics.ResolveRange(rangeName, h.Now())
	ranked := analytics.TopProductViews(events, start, end, limit)

	ids := make([]string, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.ProductID)
	}
	catalog, err := h.Catalog.GetProductsByIDs(ctx, ids)
	if err != nil {
		// Degrade to placeholder names rather than dropping the report.
		log.Printf("Error fetching catalog entries for top products: %v", err)
		catalog = map[string]models.Product{}
	}

	report := models.TopProductsReport{
		Range:         rangeName,
		TopProducts:   analytics.EnrichTopProducts(ranked, catalog),
		TotalProducts: len(ranked),
	}

	h.Metrics.ReportsTotal.WithLabelValues("top_products").Inc()
	c.JSON(http.StatusOK, report)
}
