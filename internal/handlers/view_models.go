package handlers

import (
	"quizmaster/internal/models"
)

// StateView is the JSON document returned for every event
type StateView struct {
	Stage        models.Stage         `json:"stage"`
	UserID       string               `json:"user_id"`
	CSRFToken    string               `json:"csrf_token,omitempty"`
	QuizTypes    []string             `json:"quiz_types,omitempty"`
	Progress     *models.Progress     `json:"progress,omitempty"`
	Question     *models.QuestionView `json:"question,omitempty"`
	Results      *models.ResultsView  `json:"results,omitempty"`
	EmailEnabled bool                 `json:"email_enabled,omitempty"`
	Notice       string               `json:"notice,omitempty"`
	Warning      string               `json:"warning,omitempty"`
	Error        string               `json:"error,omitempty"`
}

// Event is a user action sent over the websocket or built from an API route
type Event struct {
	Type     string `json:"type"`
	QuizType string `json:"quiz_type,omitempty"`
	Answer   string `json:"answer,omitempty"`
}

const (
	EventState  = "state"
	EventStart  = "start"
	EventAnswer = "answer"
	EventReset  = "reset"
	EventMenu   = "menu"
)

type startRequest struct {
	QuizType string `json:"quiz_type"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type emailRequest struct {
	Email string `json:"email"`
}
