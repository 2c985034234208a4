package web

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/JonMunkholm/motorcat/internal/logging"
)

// clientIP returns the caller address without the port. RemoteAddr has
// already been rewritten by TrustedRealIP for trusted proxies.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// staffLogger returns a request logger tagged with the caller, for
// endpoints that change catalog data.
func staffLogger(r *http.Request) *slog.Logger {
	return logging.WithFields(r.Context(),
		"ip", clientIP(r),
		"user_agent", r.UserAgent(),
	)
}
