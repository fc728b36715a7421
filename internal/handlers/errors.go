package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quizmaster/internal/service"
	"quizmaster/internal/session"
)

var errUnknownEvent = errors.New("unknown event type")

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	http.Error(w, userMsg, status)
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// eventStatus maps an event error to an HTTP status and a message for the
// view. Store and data problems are already described by the hint, so they
// answer 200.
func eventStatus(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.Is(err, session.ErrInvalidTransition):
		return http.StatusConflict, ErrActionNotAvailable
	case errors.Is(err, service.ErrUnknownQuizType), errors.Is(err, errUnknownEvent):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusOK, ""
	}
}
