package ingest

import (
	"net/url"
	"strings"
)

// cleanText collapses runs of whitespace into one space and trims the string.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// getDomain extracts the host from a URL.
func getDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return u.Host, nil
}

// RedactURL drops the query string, which for published sheets may carry
// access tokens, so the URL is safe to log.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return u.String()
}
