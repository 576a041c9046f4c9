package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidRange(t *testing.T) {
	for _, valid := range []string{"today", "week", "month", "year", "all"} {
		assert.True(t, IsValidRange(valid), valid)
	}
	for _, invalid := range []string{"", "fortnight", "Today", "weekly"} {
		assert.False(t, IsValidRange(invalid), invalid)
	}
}

func TestNewID(t *testing.T) {
	now := time.Date(2024, 5, 16, 12, 0, 0, 0, time.UTC)
	a := NewID(now)
	b := NewID(now)

	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "1715860800000-", "id starts with the unix-ms timestamp")
}

func TestClientIPFromHeaders(t *testing.T) {
	tests := []struct {
		name         string
		forwardedFor string
		realIP       string
		want         string
	}{
		{"forwarded-for chain takes first entry", "203.0.113.9, 10.0.0.1, 172.16.0.1", "", "203.0.113.9"},
		{"forwarded-for with spaces", " 203.0.113.9 ", "", "203.0.113.9"},
		{"falls back to real-ip", "", "198.51.100.4", "198.51.100.4"},
		{"nothing usable", "", "", "unknown"},
		{"empty chain entry", ",", "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClientIPFromHeaders(tt.forwardedFor, tt.realIP))
		})
	}
}
