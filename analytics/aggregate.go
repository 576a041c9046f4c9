package analytics

import (
	"sort"
	"time"

	"tharo/api/models"
)

// Everything in this file is a pure function of (events, now): no storage,
// no caching, no clock reads. Recomputation cost is linear in the retained
// history, which the event store caps.

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// startOfWeek returns the most recent Monday 00:00:00 (ISO week start, not
// Sunday-start) relative to t.
func startOfWeek(t time.Time) time.Time {
	d := startOfDay(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return d.AddDate(0, 0, -offset)
}

// BuildRealtimeSnapshot computes the dashboard rollup at "now": trailing
// 5-minute active users, calendar-week totals (Monday 00:00 through now),
// the rolling 7-day series, and per-channel breakdowns.
func BuildRealtimeSnapshot(events []models.AnalyticsEvent, now time.Time) models.RealtimeSnapshot {
	loc := now.Location()
	weekStart := startOfWeek(now)
	fiveMinAgo := now.Add(-5 * time.Minute)
	seriesStart := startOfDay(now.AddDate(0, 0, -6))
	seriesEnd := endOfDay(now)

	// Exactly 7 buckets, oldest first, ending on today. Present even when
	// there are no events at all.
	series := make([]models.DailyCounts, 7)
	bucketIndex := make(map[string]int, 7)
	for i := 0; i < 7; i++ {
		day := now.AddDate(0, 0, i-6)
		date := day.In(loc).Format("2006-01-02")
		series[i] = models.DailyCounts{Date: date}
		bucketIndex[date] = i
	}

	var snap models.RealtimeSnapshot
	activeSessions := make(map[string]struct{})
	weekSessions := make(map[string]struct{})
	ctaByChannel := make(map[string]int)
	trafficSources := make(map[string]int)

	for _, e := range events {
		ts := e.Timestamp.In(loc)

		if !ts.Before(fiveMinAgo) && !ts.After(now) {
			activeSessions[e.SessionID] = struct{}{}
		}

		if !ts.Before(seriesStart) && !ts.After(seriesEnd) {
			if i, ok := bucketIndex[ts.Format("2006-01-02")]; ok {
				switch e.EventType {
				case models.EventTypePageView:
					series[i].PageViews++
				case models.EventTypeProductView:
					series[i].ProductViews++
				case models.EventTypeCTAClick:
					series[i].CTAClicks++
				}
			}
		}

		if ts.Before(weekStart) {
			continue
		}

		weekSessions[e.SessionID] = struct{}{}
		channel := e.Channel
		if channel == "" {
			channel = "unknown"
		}
		trafficSources[channel]++

		switch e.EventType {
		case models.EventTypePageView:
			snap.TotalPageViewsWeek++
		case models.EventTypeProductView:
			snap.TotalProductViewsWeek++
		case models.EventTypeCTAClick:
			snap.TotalCTAClicksWeek++
			ctaByChannel[channel]++
		}
	}

	snap.ActiveUsersLast5Min = len(activeSessions)
	snap.UniqueVisitorsWeek = len(weekSessions)
	snap.Last7DaysSeries = series

	snap.CTAByChannel = make([]models.ChannelClicks, 0, len(ctaByChannel))
	for channel, clicks := range ctaByChannel {
		snap.CTAByChannel = append(snap.CTAByChannel, models.ChannelClicks{Channel: channel, Clicks: clicks})
	}
	sort.Slice(snap.CTAByChannel, func(i, j int) bool {
		if snap.CTAByChannel[i].Clicks != snap.CTAByChannel[j].Clicks {
			return snap.CTAByChannel[i].Clicks > snap.CTAByChannel[j].Clicks
		}
		return snap.CTAByChannel[i].Channel < snap.CTAByChannel[j].Channel
	})

	snap.TrafficSources = make([]models.TrafficSource, 0, len(trafficSources))
	for source, count := range trafficSources {
		snap.TrafficSources = append(snap.TrafficSources, models.TrafficSource{Source: source, Count: count})
	}
	sort.Slice(snap.TrafficSources, func(i, j int) bool {
		if snap.TrafficSources[i].Count != snap.TrafficSources[j].Count {
			return snap.TrafficSources[i].Count > snap.TrafficSources[j].Count
		}
		return snap.TrafficSources[i].Source < snap.TrafficSources[j].Source
	})

	return snap
}

// ResolveRange maps a named report range to [start, end] bounds at "now".
// Ranges start at local midnight of their first day; the end bound is
// end-of-today. Returns ok=false for unknown names.
func ResolveRange(name string, now time.Time) (start, end time.Time, ok bool) {
	end = endOfDay(now)
	switch name {
	case "today":
		start = startOfDay(now)
	case "week":
		start = startOfDay(now.AddDate(0, 0, -7))
	case "month":
		start = startOfDay(now.AddDate(0, -1, 0))
	case "year":
		start = startOfDay(now.AddDate(-1, 0, 0))
	case "all":
		start = time.Unix(0, 0)
	default:
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// ProductViewCount is one ranked (productId, views) pair, before catalog
// enrichment.
type ProductViewCount struct {
	ProductID string
	Views     int
}

// TopProductViews ranks product_view events with a non-empty productId
// inside [start, end], descending by view count, truncated to limit.
func TopProductViews(events []models.AnalyticsEvent, start, end time.Time, limit int) []ProductViewCount {
	if limit <= 0 {
		limit = 10
	}

	counts := make(map[string]int)
	for _, e := range events {
		if e.EventType != models.EventTypeProductView || e.ProductID == "" {
			continue
		}
		if e.Timestamp.Before(start) || e.Timestamp.After(end) {
			continue
		}
		counts[e.ProductID]++
	}

	ranked := make([]ProductViewCount, 0, len(counts))
	for id, views := range counts {
		ranked = append(ranked, ProductViewCount{ProductID: id, Views: views})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Views != ranked[j].Views {
			return ranked[i].Views > ranked[j].Views
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// EnrichTopProducts joins ranked view counts against the catalog. A product
// that has been deleted since it was viewed keeps its rank with placeholder
// fields; historical counts are never dropped because the catalog moved on.
func EnrichTopProducts(ranked []ProductViewCount, catalog map[string]models.Product) []models.TopProduct {
	top := make([]models.TopProduct, 0, len(ranked))
	for _, r := range ranked {
		entry := models.TopProduct{
			ProductID:   r.ProductID,
			ProductName: "Unknown Product",
			Views:       r.Views,
		}
		if p, ok := catalog[r.ProductID]; ok {
			entry.ProductName = p.Name
			if len(p.Images) > 0 {
				entry.ProductImage = p.Images[0]
			}
			entry.ProductPrice = p.Price
			entry.ProductSlug = p.Slug
		}
		top = append(top, entry)
	}
	return top
}
