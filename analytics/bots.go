package analytics

import "strings"

// Known automated-agent signatures, matched case-insensitively as
// substrings of the User-Agent header. Kept as data so new signatures are a
// one-line change.
var botSignatures = []string{
	"bot",
	"crawl",
	"spider",
	"slurp",
	"baidu",
	"bing",
	"google",
	"yahoo",
	"yandex",
	"headless",
	"phantom",
	"selenium",
	"preview",
}

// IsBot reports whether the user agent matches a known automated-agent
// signature. Matched traffic is accepted but never persisted, so scrapers
// can't tell they are being filtered.
func IsBot(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, sig := range botSignatures {
		if strings.Contains(ua, sig) {
			return true
		}
	}
	return false
}
