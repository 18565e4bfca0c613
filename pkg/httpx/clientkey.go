package httpx

import (
	"net"
	"net/http"
	"strings"
)

// KeyExtractor is a function that extracts a unique key from the request
// for rate limiting purposes (e.g., IP address, user ID, etc.)
type KeyExtractor func(*http.Request) string

// IPKeyExtractor extracts the client IP address from a request that arrived
// through one trusted reverse proxy. The proxy appends the address it saw to
// X-Forwarded-For, so the right-most entry is the only one the client cannot
// forge. X-Real-IP and then the socket address are used when it is absent.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		if ip := strings.TrimSpace(hops[len(hops)-1]); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	return DirectIPKeyExtractor(r)
}

// DirectIPKeyExtractor uses only the socket address. Use it when the service
// is not behind a trusted proxy, since forwarding headers are client-controlled.
func DirectIPKeyExtractor(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
