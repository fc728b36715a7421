package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"quizmaster/internal/models"
	"quizmaster/internal/service"
	"quizmaster/internal/session"
	"quizmaster/internal/validation"
)

const maxBodyBytes = 4096

// QuizHandler serves the quiz API
type QuizHandler struct {
	quiz       *service.QuizService
	sessions   *SessionRegistry
	mailer     *service.ResultsMailer
	middleware *Middleware
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quiz *service.QuizService, sessions *SessionRegistry, mailer *service.ResultsMailer, middleware *Middleware) *QuizHandler {
	return &QuizHandler{
		quiz:       quiz,
		sessions:   sessions,
		mailer:     mailer,
		middleware: middleware,
	}
}

// Register adds the quiz routes to mux. Every route expects the Identify
// middleware to have run.
func (h *QuizHandler) Register(mux *http.ServeMux) {
	m := h.middleware
	mux.HandleFunc("GET /api/state", h.State)
	mux.HandleFunc("POST /api/quiz/start", m.RateLimit(m.CSRFProtect(h.Start)))
	mux.HandleFunc("POST /api/quiz/answer", m.RateLimit(m.CSRFProtect(h.Answer)))
	mux.HandleFunc("POST /api/progress/reset", m.RateLimit(m.CSRFProtect(h.Reset)))
	mux.HandleFunc("POST /api/menu", m.RateLimit(m.CSRFProtect(h.Menu)))
	mux.HandleFunc("POST /api/results/email", m.RateLimit(m.CSRFProtect(h.EmailResults)))
}

// State returns the current view without changing anything
func (h *QuizHandler) State(w http.ResponseWriter, r *http.Request) {
	h.serveEvent(w, r, Event{Type: EventState})
}

// Start begins a quiz of the requested type
func (h *QuizHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.serveEvent(w, r, Event{Type: EventStart, QuizType: req.QuizType})
}

// Answer submits an answer to the current question
func (h *QuizHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.serveEvent(w, r, Event{Type: EventAnswer, Answer: req.Answer})
}

// Reset clears the user's question history
func (h *QuizHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.serveEvent(w, r, Event{Type: EventReset})
}

// Menu leaves the results view
func (h *QuizHandler) Menu(w http.ResponseWriter, r *http.Request) {
	h.serveEvent(w, r, Event{Type: EventMenu})
}

// EmailResults sends the finished quiz's results to the given address
func (h *QuizHandler) EmailResults(w http.ResponseWriter, r *http.Request) {
	if h.mailer == nil || !h.mailer.IsEnabled() {
		respondWithError(w, http.StatusServiceUnavailable, ErrEmailUnavailable, "", nil)
		return
	}

	var req emailRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	userID := GetUserID(r.Context())
	var results models.ResultsView
	var resultsErr error
	h.sessions.With(userID, func(sess *session.Session, _ *service.RenderHint) {
		results, resultsErr = sess.ResultsView()
	})
	if resultsErr != nil {
		respondWithError(w, http.StatusConflict, ErrActionNotAvailable, "Rejected results email", resultsErr)
		return
	}

	if err := h.mailer.SendResults(r.Context(), req.Email, results); err != nil {
		respondWithError(w, http.StatusBadGateway, ErrEmailFailed, "Failed to email results", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (h *QuizHandler) serveEvent(w http.ResponseWriter, r *http.Request, ev Event) {
	view, err := h.Apply(GetUserID(r.Context()), ev)
	status, _ := eventStatus(err)
	respondJSON(w, status, view)
}

// Apply dispatches one event for userID and returns the view to render.
// The view is always complete; the error reports what the event could not do.
func (h *QuizHandler) Apply(userID string, ev Event) (StateView, error) {
	var view StateView
	var eventErr error

	h.sessions.With(userID, func(sess *session.Session, opened *service.RenderHint) {
		hint := service.RenderHint{Stage: sess.Stage()}

		switch ev.Type {
		case EventState:
		case EventStart:
			hint, eventErr = h.quiz.OnStart(sess, ev.QuizType)
		case EventAnswer:
			hint, eventErr = h.quiz.OnSubmit(sess, ev.Answer)
		case EventReset:
			hint, eventErr = h.quiz.OnReset(sess)
		case EventMenu:
			hint, eventErr = h.quiz.OnReturnToMenu(sess)
		default:
			eventErr = fmt.Errorf("%w: %q", errUnknownEvent, ev.Type)
		}

		if opened != nil && hint.Warning == "" {
			hint.Warning = opened.Warning
		}
		view = h.buildView(sess, hint)
	})

	if _, msg := eventStatus(eventErr); msg != "" {
		view.Error = msg
	}
	return view, eventErr
}

func (h *QuizHandler) buildView(sess *session.Session, hint service.RenderHint) StateView {
	view := StateView{
		Stage:     sess.Stage(),
		UserID:    sess.UserID(),
		CSRFToken: h.middleware.CSRFToken(sess.UserID()),
		Notice:    hint.Notice,
		Warning:   hint.Warning,
	}

	switch sess.Stage() {
	case models.StageMenu:
		view.QuizTypes = models.QuizTypes
		progress, err := h.quiz.Progress(sess)
		if err != nil {
			log.Printf("Warning: failed to load progress for %s: %v", sess.UserID(), err)
		} else {
			view.Progress = &progress
		}
	case models.StageQuiz:
		if q, err := sess.QuestionView(); err == nil {
			view.Question = &q
		}
	case models.StageResults:
		if res, err := sess.ResultsView(); err == nil {
			view.Results = &res
		}
		view.EmailEnabled = h.mailer != nil && h.mailer.IsEnabled()
	}
	return view
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequest, "Failed to decode request", err)
		return false
	}
	return true
}
