package service

import (
	"errors"
	"fmt"
	"log"

	"quizmaster/internal/models"
	"quizmaster/internal/session"
)

var (
	// ErrInsufficientQuestions is returned when a quiz type has fewer than
	// models.BatchSize eligible questions
	ErrInsufficientQuestions = errors.New("not enough questions")

	// ErrUnknownQuizType is returned for a quiz label outside models.QuizTypes
	ErrUnknownQuizType = errors.New("unknown quiz type")
)

const (
	NoticeResetDone         = "All questions have been reset successfully!"
	WarningNotSaved         = "Your answers could not be saved. This quiz will continue without saving progress."
	WarningStoreUnavailable = "Your question bank is unavailable right now. Please try again."
)

// QuestionStore is the per-user persistence the controller drives
type QuestionStore interface {
	EnsureInitialized(userID string) error
	Query(userID string, filter models.Filter) ([]models.Question, error)
	RecordAnswer(userID string, questionID int64, correct bool) error
	ResetAll(userID string) error
	Progress(userID string) (models.Progress, error)
}

// BatchBuilder turns sampled questions into a quiz batch
type BatchBuilder interface {
	BuildBatch(questions []models.Question) (models.Batch, error)
}

// RenderHint tells the host which view to show after an event
type RenderHint struct {
	Stage   models.Stage `json:"stage"`
	Notice  string       `json:"notice,omitempty"`
	Warning string       `json:"warning,omitempty"`
}

// QuizService handles quiz events for a session
type QuizService struct {
	store   QuestionStore
	sampler BatchBuilder
}

// NewQuizService creates a new quiz service
func NewQuizService(store QuestionStore, sampler BatchBuilder) *QuizService {
	return &QuizService{
		store:   store,
		sampler: sampler,
	}
}

// InsufficientMessage is the notice shown when a quiz type cannot fill a batch
func InsufficientMessage(quizType string) string {
	return fmt.Sprintf("Not enough questions available for %s.", quizType)
}

// OpenSession creates a session in the menu stage and prepares the user's
// question bank. A store failure leaves the session usable and is reported
// as a warning.
func (s *QuizService) OpenSession(userID string) (*session.Session, RenderHint, error) {
	sess := session.New(userID)
	hint := RenderHint{Stage: sess.Stage()}

	if err := s.store.EnsureInitialized(userID); err != nil {
		log.Printf("Warning: failed to initialize question store for %s: %v", userID, err)
		hint.Warning = WarningStoreUnavailable
		return sess, hint, err
	}
	return sess, hint, nil
}

// OnStart builds a batch for quizType and moves the session into the quiz
func (s *QuizService) OnStart(sess *session.Session, quizType string) (RenderHint, error) {
	if sess.Stage() != models.StageMenu {
		return s.rejected(sess, &session.TransitionError{Event: "start", Stage: sess.Stage()})
	}

	filter, ok := models.FilterForQuizType(quizType)
	if !ok {
		log.Printf("Rejected start for %s: unknown quiz type %q", sess.UserID(), quizType)
		return RenderHint{Stage: sess.Stage(), Warning: "Please choose a quiz type."},
			fmt.Errorf("%w: %q", ErrUnknownQuizType, quizType)
	}

	questions, err := s.store.Query(sess.UserID(), filter)
	if err != nil {
		log.Printf("Warning: failed to query questions for %s: %v", sess.UserID(), err)
		return RenderHint{Stage: sess.Stage(), Warning: WarningStoreUnavailable}, err
	}
	if len(questions) < models.BatchSize {
		return RenderHint{Stage: sess.Stage(), Warning: InsufficientMessage(quizType)},
			fmt.Errorf("%w: %s has %d of %d", ErrInsufficientQuestions, quizType, len(questions), models.BatchSize)
	}

	batch, err := s.sampler.BuildBatch(questions)
	if err != nil {
		return RenderHint{Stage: sess.Stage(), Warning: WarningStoreUnavailable},
			fmt.Errorf("failed to build quiz batch: %w", err)
	}
	if err := sess.Start(quizType, batch); err != nil {
		return s.rejected(sess, err)
	}

	log.Printf("Quiz started: user=%s, type=%s", sess.UserID(), quizType)
	return RenderHint{Stage: sess.Stage()}, nil
}

// OnSubmit answers the current question and records the outcome. When the
// write fails the answer still counts and the rest of the quiz runs in memory.
func (s *QuizService) OnSubmit(sess *session.Session, answer string) (RenderHint, error) {
	result, err := sess.Submit(answer)
	if err != nil {
		return s.rejected(sess, err)
	}

	if sess.Degraded() {
		return RenderHint{Stage: sess.Stage(), Warning: WarningNotSaved}, nil
	}

	if err := s.store.RecordAnswer(sess.UserID(), result.QuestionID, result.IsCorrect); err != nil {
		sess.MarkDegraded()
		log.Printf("Warning: failed to record answer for %s (question %d): %v", sess.UserID(), result.QuestionID, err)
		return RenderHint{Stage: sess.Stage(), Warning: WarningNotSaved}, err
	}
	return RenderHint{Stage: sess.Stage()}, nil
}

// OnReset clears every question's history for the session's user
func (s *QuizService) OnReset(sess *session.Session) (RenderHint, error) {
	if err := sess.Reset(); err != nil {
		return s.rejected(sess, err)
	}

	if err := s.store.ResetAll(sess.UserID()); err != nil {
		log.Printf("Warning: failed to reset questions for %s: %v", sess.UserID(), err)
		return RenderHint{Stage: sess.Stage(), Warning: WarningStoreUnavailable}, err
	}

	log.Printf("Progress reset: user=%s", sess.UserID())
	return RenderHint{Stage: sess.Stage(), Notice: NoticeResetDone}, nil
}

// OnReturnToMenu leaves the results view
func (s *QuizService) OnReturnToMenu(sess *session.Session) (RenderHint, error) {
	if err := sess.ReturnToMenu(); err != nil {
		return s.rejected(sess, err)
	}
	return RenderHint{Stage: sess.Stage()}, nil
}

// Progress returns the raw counts shown on the menu
func (s *QuizService) Progress(sess *session.Session) (models.Progress, error) {
	return s.store.Progress(sess.UserID())
}

func (s *QuizService) rejected(sess *session.Session, err error) (RenderHint, error) {
	log.Printf("Rejected event for %s: %v", sess.UserID(), err)
	return RenderHint{Stage: sess.Stage()}, err
}
