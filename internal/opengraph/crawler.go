package opengraph

import "strings"

// crawlerTokens are matched as case-insensitive substrings of the
// User-Agent. The list is intentionally permissive: serving the enhanced
// HTML to a human costs nothing, while missing a crawler breaks the
// social preview.
var crawlerTokens = []string{
	"bot",
	"crawler",
	"spider",
	"facebook",
	"twitter",
	"linkedin",
	"whatsapp",
	"slack",
	"discord",
	"telegram",
	"pinterest",
}

// IsCrawler reports whether the User-Agent belongs to a search indexer or
// social-preview fetcher. Total over all strings; empty input is false.
func IsCrawler(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	ua := strings.ToLower(userAgent)
	for _, token := range crawlerTokens {
		if strings.Contains(ua, token) {
			return true
		}
	}
	return false
}
