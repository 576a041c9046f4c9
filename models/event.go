package models

import "time"

// Event schema version written to every persisted record. Readers ignore
// fields they don't know; bump this when the shape changes incompatibly.
const EventSchemaVersion = 1

const (
	EventTypePageView    = "page_view"
	EventTypeProductView = "product_view"
	EventTypeCTAClick    = "cta_click"
)

// ValidEventType reports whether t is one of the known event types.
func ValidEventType(t string) bool {
	switch t {
	case EventTypePageView, EventTypeProductView, EventTypeCTAClick:
		return true
	default:
		return false
	}
}

// AnalyticsEvent is a single tracked user action. Immutable once written:
// the ingestion handler is the only writer, and it assigns ID, Timestamp,
// Channel, UserAgent and IP itself — none of those are trusted from the
// client payload.
type AnalyticsEvent struct {
	Version   int       `json:"v"`
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	EventType string    `json:"eventType"`
	URL       string    `json:"url"`
	Referrer  string    `json:"referrer"`
	Timestamp time.Time `json:"timestamp"`
	Channel   string    `json:"channel"`
	ProductID string    `json:"productId,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	IP        string    `json:"ip,omitempty"`
}

// TrackRequest is the ingestion payload. Only these five fields are read
// from the client; anything else in the body is ignored.
type TrackRequest struct {
	SessionID string `json:"sessionId"`
	EventType string `json:"eventType"`
	URL       string `json:"url"`
	Referrer  string `json:"referrer"`
	ProductID string `json:"productId"`
}

// DailyCounts is one day-bucket of the 7-day series.
type DailyCounts struct {
	Date         string `json:"date"` // YYYY-MM-DD
	PageViews    int    `json:"pageViews"`
	ProductViews int    `json:"productViews"`
	CTAClicks    int    `json:"ctaClicks"`
}

type ChannelClicks struct {
	Channel string `json:"channel"`
	Clicks  int    `json:"clicks"`
}

type TrafficSource struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// RealtimeSnapshot is the full dashboard rollup, recomputed from the raw
// event history on every request.
type RealtimeSnapshot struct {
	ActiveUsersLast5Min   int             `json:"activeUsersLast5Min"`
	TotalPageViewsWeek    int             `json:"totalPageViewsWeek"`
	TotalProductViewsWeek int             `json:"totalProductViewsWeek"`
	TotalCTAClicksWeek    int             `json:"totalCtaClicksWeek"`
	UniqueVisitorsWeek    int             `json:"uniqueVisitorsWeek"`
	Last7DaysSeries       []DailyCounts   `json:"last7DaysSeries"`
	CTAByChannel          []ChannelClicks `json:"ctaByChannel"`
	TrafficSources        []TrafficSource `json:"trafficSources"`
}

// TopProduct is one ranked entry of the top-products report, enriched with
// catalog data when the product still exists.
type TopProduct struct {
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	ProductImage string  `json:"productImage"`
	ProductPrice float64 `json:"productPrice"`
	ProductSlug  string  `json:"productSlug"`
	Views        int     `json:"views"`
}

type TopProductsReport struct {
	Range         string       `json:"range"`
	TotalProducts int          `json:"totalProducts"`
	TopProducts   []TopProduct `json:"topProducts"`
}
