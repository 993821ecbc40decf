package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type contextKey struct{}

// authContextKey marks requests that presented a valid API key.
var authContextKey = contextKey{}

// WithAuthenticated marks the context as carrying a valid API key.
func WithAuthenticated(ctx context.Context) context.Context {
	return context.WithValue(ctx, authContextKey, true)
}

// Authenticated reports whether the request presented a valid API key.
// Public routes pass through the auth middleware without one, so handlers
// shared between the storefront and the back office use this to decide how
// much to show.
func Authenticated(r *http.Request) bool {
	ok, _ := r.Context().Value(authContextKey).(bool)
	return ok
}

// CORS adds CORS headers to the response.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// isPublic reports whether a route is reachable without an API key. The
// storefront browses the catalogue, places orders and validates discount
// codes anonymously; everything else is back-office.
func isPublic(r *http.Request) bool {
	path := r.URL.Path
	switch {
	case path == "/health":
		return true
	case r.Method == http.MethodGet && (path == "/api/products" || strings.HasPrefix(path, "/api/products/")):
		return true
	case r.Method == http.MethodGet && (path == "/api/categories" || strings.HasPrefix(path, "/api/categories/")):
		return true
	case r.Method == http.MethodPost && path == "/api/orders":
		return true
	case r.Method == http.MethodPost && path == "/api/discounts/validate":
		return true
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/api/stock/") && strings.HasSuffix(path, "/availability"):
		return true
	}
	return false
}

// APIKeyAuth validates the API key from the X-API-Key header on back-office
// routes. A valid key marks the request authenticated so shared handlers can
// tell admin calls from storefront ones.
func APIKeyAuth(apiKey string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			providedKey := r.Header.Get("X-API-Key")
			if providedKey != "" && providedKey == apiKey {
				next.ServeHTTP(w, r.WithContext(WithAuthenticated(r.Context())))
				return
			}

			if isPublic(r) {
				next.ServeHTTP(w, r)
				return
			}

			if providedKey == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("missing API key")
				http.Error(w, "unauthorised: missing API key", http.StatusUnauthorized)
				return
			}

			logger.Warn().
				Str("path", r.URL.Path).
				Str("provided_key", providedKey[:min(8, len(providedKey))]).
				Msg("invalid API key")
			http.Error(w, "unauthorised: invalid API key", http.StatusUnauthorized)
		})
	}
}

// Logging logs HTTP requests with timing information.
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Create a response writer wrapper to capture status code
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.statusCode).
				Dur("duration", duration).
				Str("remote_addr", r.RemoteAddr).
				Msg("http request")
		})
	}
}

// Recovery recovers from panics and returns a 500 error.
func Recovery(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error().
						Interface("panic", err).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"error": "internal server error"}`))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code.
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
