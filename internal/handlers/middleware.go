package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"flashdeck/internal/security"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokens     *security.TokenIssuer
	apiKeyHash string
	limiter    *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(tokens *security.TokenIssuer, apiKeyHash string, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		tokens:     tokens,
		apiKeyHash: apiKeyHash,
		limiter:    limiter,
	}
}

// RequireAPIKey guards authoring endpoints with the operator API key
func (m *Middleware) RequireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if !security.CheckAPIKey(m.apiKeyHash, key) {
			respondWithError(w, http.StatusUnauthorized, "Invalid API key", "", nil)
			return
		}
		next(w, r)
	}
}

// RequireSessionToken guards session endpoints with the bearer token issued
// at session creation. The token's subject must match the session ID in the
// path, so a token can only drive its own session.
func (m *Middleware) RequireSessionToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			respondWithError(w, http.StatusUnauthorized, "Missing bearer token", "", nil)
			return
		}

		sessionID, err := m.tokens.Verify(token)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid token", "", nil)
			return
		}
		if sessionID != r.PathValue("id") {
			respondWithError(w, http.StatusForbidden, "Token does not match session", "", nil)
			return
		}
		next(w, r)
	}
}

// RateLimit throttles requests per session, falling back to client IP for
// requests without a session in the path
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.PathValue("id")
		if key == "" {
			key = security.GetClientIP(r)
		}
		if !m.limiter.Allow(key) {
			respondWithError(w, http.StatusTooManyRequests, "Too many requests", "", nil)
			return
		}
		next(w, r)
	}
}

// Logging logs every request with its duration
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
