package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"quizmaster/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const UserIDContextKey ContextKey = "user_id"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	signer  *security.TokenSigner
	csrf    *security.CSRFGenerator
	limiter *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(signer *security.TokenSigner, csrf *security.CSRFGenerator, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		signer:  signer,
		csrf:    csrf,
		limiter: limiter,
	}
}

// Identify resolves the user token from the identity cookie, issuing a new
// token when the cookie is missing or fails verification
func (m *Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var userID string
		if cookie, err := r.Cookie(TokenCookieName); err == nil {
			if id, err := m.signer.Parse(cookie.Value); err == nil {
				userID = id
			} else {
				log.Printf("Discarding identity cookie: %v", err)
			}
		}

		if userID == "" {
			userID = security.NewUserToken()
			token, expires, err := m.signer.Issue(userID)
			if err != nil {
				respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to issue identity token", err)
				return
			}
			http.SetCookie(w, security.CreateTokenCookie(r, TokenCookieName, token, expires))
			log.Printf("Issued user token %s", userID)
		}

		ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CSRFProtect rejects requests without the CSRF token issued for the user
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := GetUserID(r.Context())
		if !m.csrf.ValidateToken(userID, r.Header.Get(CSRFHeaderName)) {
			respondWithError(w, http.StatusForbidden, ErrInvalidCSRFToken, "", nil)
			return
		}
		next(w, r)
	}
}

// RateLimit limits events per user token
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.limiter.Allow(GetUserID(r.Context())) {
			w.Header().Set("Retry-After", "60")
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

// CSRFToken returns the token the client must echo on state-changing requests
func (m *Middleware) CSRFToken(userID string) string {
	token, err := m.csrf.GenerateToken(userID)
	if err != nil {
		log.Printf("Failed to generate CSRF token: %v", err)
		return ""
	}
	return token
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetUserID retrieves the user token from the request context
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDContextKey).(string)
	return userID
}
