// Package clientip resolves the client address of an HTTP request for
// rate-limit keying. Resolution order: X-Forwarded-For (first entry),
// X-Real-IP, the direct socket address, then the literal "unknown" so a
// request with no resolvable address still gets a stable key.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// UnknownIP is returned when no candidate address parses.
const UnknownIP = "unknown"

// FromRequest returns the client's IP address.
func FromRequest(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// The first entry is the originating client; everything after it
		// is proxy hops.
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := parseIP(first); ip != "" {
			return ip
		}
	}

	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr may already be a bare IP.
		host = r.RemoteAddr
	}
	if ip := parseIP(host); ip != "" {
		return ip
	}

	return UnknownIP
}

// parseIP validates and normalizes an address candidate, returning ""
// when it is not a valid IP.
func parseIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}
	return ip.String()
}
