package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectChannel(t *testing.T) {
	tests := []struct {
		name     string
		referrer string
		want     string
	}{
		{"empty referrer is direct", "", "direct"},
		{"unparseable referrer is direct", "not a url at all", "direct"},
		{"scheme-less referrer is direct", "/internal/path", "direct"},
		{"facebook", "https://www.facebook.com/some/page", "facebook"},
		{"facebook mobile short domain", "https://m.fb.com/story", "facebook"},
		{"zalo", "https://zalo.me/chat", "zalo"},
		{"tiktok", "https://www.tiktok.com/@shop", "tiktok"},
		{"instagram", "https://l.instagram.com/", "instagram"},
		{"youtube", "https://www.youtube.com/watch?v=x", "youtube"},
		{"twitter short domain", "https://t.co/abc", "twitter"},
		{"linkedin", "https://www.linkedin.com/feed", "linkedin"},
		{"messenger", "https://m.me/thehouse", "messenger"},
		{"shopee", "https://shopee.vn/product/1", "shopee"},
		{"lazada", "https://www.lazada.vn/", "lazada"},
		{"tiki", "https://tiki.vn/deal", "tiki"},
		{"google search", "https://www.google.com/search?q=ao+dai", "google"},
		{"bing", "https://www.bing.com/search?q=x", "bing"},
		{"yahoo", "https://search.yahoo.com/", "yahoo"},
		{"coccoc", "https://coccoc.com/search", "coccoc"},
		{"unknown external host is referral", "https://randomblog.example.com/post", "referral"},
		{"case insensitive host", "https://WWW.FACEBOOK.COM/page", "facebook"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectChannel(tt.referrer))
		})
	}
}

func TestDetectChannelOrderedFirstMatchWins(t *testing.T) {
	// "messenger.google.com" contains both "messenger" and "google";
	// messenger sits earlier in the table and must win.
	assert.Equal(t, "messenger", DetectChannel("https://messenger.google.com/"))
}
