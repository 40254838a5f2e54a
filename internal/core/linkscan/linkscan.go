// Package linkscan finds media URLs in chat text and checks them
// against the set of sites the bot knows how to fetch from.
package linkscan

import (
	"net/url"
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// supportedDomains are matched by suffix, so subdomains like
// www.instagram.com or vm.tiktok.com are covered by their base entry.
var supportedDomains = []string{
	"youtube.com", "youtu.be",
	"instagram.com", "instagr.am",
	"tiktok.com",
	"facebook.com", "fb.watch",
	"twitter.com", "x.com",
	"vimeo.com",
}

// FindURLs returns every http(s) URL in the text, in order of
// appearance.
func FindURLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

// Supported reports whether the URL's host belongs to a recognized
// media site.
func Supported(rawURL string) bool {
	host := hostname(rawURL)
	if host == "" {
		return false
	}
	for _, d := range supportedDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// IsInstagram reports whether the URL points at Instagram, which may
// need a session cookie for private or rate-limited content.
func IsInstagram(rawURL string) bool {
	host := hostname(rawURL)
	return host == "instagram.com" || strings.HasSuffix(host, ".instagram.com") ||
		host == "instagr.am" || strings.HasSuffix(host, ".instagr.am")
}

func hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
