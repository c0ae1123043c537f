package observability

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

func DeviceIDFromRequest(r *http.Request) string {
	return r.Header.Get("X-Device-Id")
}

// RequestIDFromRequest returns the propagated request id, minting one when
// the client did not send any.
func RequestIDFromRequest(r *http.Request) string {
	if id := r.Header.Get("X-Request-Id"); id != "" {
		return id
	}
	return uuid.NewString()
}

func IPFromRequest(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
