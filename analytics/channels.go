package analytics

import (
	"net/url"
	"strings"
)

const (
	ChannelDirect   = "direct"
	ChannelReferral = "referral"
)

type channelRule struct {
	channel  string
	patterns []string
}

// Ordered referrer-hostname rules, first match wins. The table is biased
// toward the Vietnamese social/e-commerce landscape on purpose; keep the
// order stable, attribution must stay deterministic across releases.
var channelRules = []channelRule{
	{"facebook", []string{"facebook", "fb.com", "fbclid"}},
	{"zalo", []string{"zalo", "zaloapp"}},
	{"tiktok", []string{"tiktok", "bytedance"}},
	{"instagram", []string{"instagram"}},
	{"youtube", []string{"youtube"}},
	{"twitter", []string{"twitter", "t.co"}},
	{"linkedin", []string{"linkedin"}},
	{"messenger", []string{"messenger", "m.me"}},
	{"shopee", []string{"shopee"}},
	{"lazada", []string{"lazada"}},
	{"tiki", []string{"tiki"}},
	{"google", []string{"google"}},
	{"bing", []string{"bing"}},
	{"yahoo", []string{"yahoo"}},
	{"coccoc", []string{"coccoc"}},
}

// DetectChannel classifies a raw referrer into a traffic channel. Empty or
// unparseable referrers are "direct"; any external host not in the table is
// "referral".
func DetectChannel(referrer string) string {
	if referrer == "" {
		return ChannelDirect
	}

	u, err := url.Parse(referrer)
	if err != nil || u.Hostname() == "" {
		return ChannelDirect
	}

	host := strings.ToLower(u.Hostname())
	for _, rule := range channelRules {
		for _, pattern := range rule.patterns {
			if strings.Contains(host, pattern) {
				return rule.channel
			}
		}
	}

	return ChannelReferral
}
