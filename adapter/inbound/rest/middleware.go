package rest

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/bantuankita/bantuankita/config"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestLogger logs every request at debug level
func RequestLogger(logger outbound.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
				// the upgrader needs the raw writer to hijack the connection
				next.ServeHTTP(w, r)
				logger.Debug("Request", "method", r.Method, "path", r.URL.Path, "upgrade", true)
				return
			}

			next.ServeHTTP(rec, r)
			logger.Debug("Request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start).String(),
			)
		})
	}
}

// CORS answers preflight requests and sets the allow headers for configured origins.
// A "*" entry allows any origin.
func CORS(cfg *config.Config) func(http.Handler) http.Handler {
	origins := cfg.HTTP.CORS.AllowedOrigins
	allowAny := slices.Contains(origins, "*")

	return func(next http.Handler) http.Handler {
		if !cfg.HTTP.CORS.Enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAny || slices.Contains(origins, origin)) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
