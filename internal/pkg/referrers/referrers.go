// Package referrers maps raw http_referer values onto canonical
// acquisition channel names used for session attribution.
package referrers

import (
	"net/url"
	"strings"
)

// Referrer hostnames with a known acquisition channel. Matching is exact
// on the case-normalized hostname, never substring.
var knownChannels = map[string]string{
	"gsearch.com":    "gsearch",
	"bsearch.com":    "bsearch",
	"socialbook.com": "socialbook",
}

// ChannelForReferrer resolves a raw referrer URL to its canonical channel
// name. The second return value reports whether the referrer hostname is
// in the known set; callers decide what sentinel to use when it is not.
func ChannelForReferrer(referrer string) (string, bool) {
	hostname := normalizeHost(referrer)
	if hostname == "" {
		return "", false
	}

	channel, ok := knownChannels[hostname]
	return channel, ok
}

// normalizeHost extracts a lowercase hostname from a referrer value,
// tolerating bare hostnames without a scheme.
func normalizeHost(referrer string) string {
	referrer = strings.TrimSpace(strings.ToLower(referrer))
	if referrer == "" {
		return ""
	}

	if u, err := url.Parse(referrer); err == nil && u.Host != "" {
		referrer = u.Host
	}

	referrer = strings.TrimPrefix(referrer, "www.")
	if idx := strings.IndexAny(referrer, "/:"); idx >= 0 {
		referrer = referrer[:idx]
	}
	return referrer
}
