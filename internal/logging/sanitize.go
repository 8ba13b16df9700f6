package logging

import (
	"net/url"
	"strings"
)

// SanitizeURL removes userinfo and fragment before a URL is logged. Query
// parameters are preserved: for the sources this tool syncs they carry the
// item identity (watch?v=..., ?list=...), not credentials.
func SanitizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return s
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return s
	}
	u.User = nil
	u.Fragment = ""
	return u.String()
}
