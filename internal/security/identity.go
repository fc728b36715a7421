package security

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserTokenLength is the number of UUID characters kept for a user token
const UserTokenLength = 8

// NewUserToken creates the short opaque token that identifies a user's
// question store
func NewUserToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:UserTokenLength]
}

// IsSecureRequest determines if the request is over HTTPS
// Checks TLS connection, X-Forwarded-Proto header (for reverse proxies), and URL scheme
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
		return true
	}
	return r.URL.Scheme == "https"
}

// CreateTokenCookie creates the identity cookie with proper security flags
func CreateTokenCookie(r *http.Request, name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}
