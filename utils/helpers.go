package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IsValidRange reports whether r is a known top-products report range.
func IsValidRange(r string) bool {
	switch r {
	case "today", "week", "month", "year", "all":
		return true
	default:
		return false
	}
}

// NewID builds a server-assigned id: creation time in unix milliseconds
// plus a random suffix. Practically unique, not cryptographic.
func NewID(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}

// ClientIPFromHeaders extracts the originating client IP from forwarding
// headers, taking the first entry of a comma-separated X-Forwarded-For
// chain. Returns "unknown" when nothing usable is present.
func ClientIPFromHeaders(forwardedFor, realIP string) string {
	ip := forwardedFor
	if ip == "" {
		ip = realIP
	}
	if ip == "" {
		return "unknown"
	}
	if i := strings.Index(ip, ","); i >= 0 {
		ip = ip[:i]
	}
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return "unknown"
	}
	return ip
}
