package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBot(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		want      bool
	}{
		{"googlebot", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", true},
		{"bingbot", "Mozilla/5.0 (compatible; bingbot/2.0)", true},
		{"generic crawler", "mysite-crawler/1.0", true},
		{"spider", "Baiduspider/2.0", true},
		{"headless chrome", "Mozilla/5.0 HeadlessChrome/120.0", true},
		{"phantomjs", "PhantomJS/2.1.1", true},
		{"selenium", "selenium-webdriver", true},
		{"link preview fetcher", "Slack-LinkPreview/1.0", true},
		{"uppercase signature", "MY-CRAWL-AGENT", true},
		{"real chrome on mac", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36", false},
		{"real safari on iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1", false},
		{"empty user agent", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBot(tt.userAgent))
		})
	}
}
