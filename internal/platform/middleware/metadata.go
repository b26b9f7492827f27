package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"github.com/Rolando1980/client-geo-logger/pkg/requestcontext"
)

// Metadata extracts the client IP and a compact User-Agent summary
// ("browser/version os") into the request context. The audit trail attaches
// both to login and visit events.
func Metadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientMetadata(r.Context(), clientIP(r), uaSummary(r.UserAgent()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// First hop is the originating client.
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func uaSummary(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	parts := make([]string, 0, 2)
	if name != "" {
		if version != "" {
			parts = append(parts, name+"/"+version)
		} else {
			parts = append(parts, name)
		}
	}
	if os := ua.OS(); os != "" {
		parts = append(parts, os)
	}
	if len(parts) == 0 {
		return raw
	}
	return strings.Join(parts, " ")
}
