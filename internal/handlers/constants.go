package handlers

const (
	TokenCookieName = "quiz_token"
	CSRFHeaderName  = "X-CSRF-Token"

	ErrInvalidRequest      = "Invalid request body"
	ErrInvalidCSRFToken    = "Invalid CSRF token"
	ErrTooManyRequests     = "Too many requests"
	ErrInternalServerError = "Internal server error"
	ErrActionNotAvailable  = "That action is not available right now."
	ErrEmailUnavailable    = "Email delivery is not configured"
	ErrEmailFailed         = "Failed to send results email"
)
