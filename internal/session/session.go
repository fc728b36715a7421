package session

import (
	"errors"
	"fmt"

	"quizmaster/internal/models"
)

// ErrInvalidTransition is matched by every event the current stage rejects
var ErrInvalidTransition = errors.New("invalid transition")

// TransitionError reports an event dispatched in a stage that does not accept it
type TransitionError struct {
	Event string
	Stage models.Stage
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %q not accepted in stage %q", ErrInvalidTransition, e.Event, e.Stage)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// Session is one user's in-progress interaction: menu, quiz, then results.
// It is owned by a single caller and is not safe for concurrent use.
type Session struct {
	userID   string
	stage    models.Stage
	quizType string
	batch    models.Batch
	position int
	answers  []string
	results  []models.QuestionResult
	degraded bool
}

// New creates a session in the menu stage
func New(userID string) *Session {
	return &Session{
		userID: userID,
		stage:  models.StageMenu,
	}
}

func (s *Session) UserID() string      { return s.userID }
func (s *Session) Stage() models.Stage { return s.stage }
func (s *Session) QuizType() string    { return s.quizType }
func (s *Session) Position() int       { return s.position }

// Degraded reports whether persistence failed during the current quiz
func (s *Session) Degraded() bool { return s.degraded }

// MarkDegraded records that answers for the rest of this quiz live only in memory
func (s *Session) MarkDegraded() { s.degraded = true }

// Answers returns a copy of the submitted answers
func (s *Session) Answers() []string {
	return append([]string(nil), s.answers...)
}

// Results returns a copy of the per-question results so far
func (s *Session) Results() []models.QuestionResult {
	return append([]models.QuestionResult(nil), s.results...)
}

// Start moves from menu to quiz with a fresh batch
func (s *Session) Start(quizType string, batch models.Batch) error {
	if s.stage != models.StageMenu {
		return &TransitionError{Event: "start", Stage: s.stage}
	}
	if len(batch) != models.BatchSize {
		return fmt.Errorf("%w: got %d", models.ErrBatchSize, len(batch))
	}

	s.stage = models.StageQuiz
	s.quizType = quizType
	s.batch = batch
	s.position = 0
	s.answers = make([]string, 0, models.BatchSize)
	s.results = make([]models.QuestionResult, 0, models.BatchSize)
	s.degraded = false
	return nil
}

// Current returns the question being answered
func (s *Session) Current() (models.BatchQuestion, error) {
	if s.stage != models.StageQuiz {
		return models.BatchQuestion{}, &TransitionError{Event: "current question", Stage: s.stage}
	}
	return s.batch[s.position], nil
}

// Submit records an answer to the current question and advances. The
// tenth answer moves the session to results.
func (s *Session) Submit(answer string) (models.QuestionResult, error) {
	current, err := s.Current()
	if err != nil {
		return models.QuestionResult{}, &TransitionError{Event: "submit", Stage: s.stage}
	}

	result := models.QuestionResult{
		QuestionID:    current.Question.ID,
		Question:      current.Question.Text,
		CorrectAnswer: current.Question.Answer,
		UserAnswer:    answer,
		IsCorrect:     answer == current.Question.Answer,
	}

	s.answers = append(s.answers, answer)
	s.results = append(s.results, result)
	s.position++

	if s.position >= len(s.batch) {
		s.stage = models.StageResults
	}
	return result, nil
}

// ReturnToMenu discards the finished quiz and goes back to the menu
func (s *Session) ReturnToMenu() error {
	if s.stage != models.StageResults {
		return &TransitionError{Event: "return to menu", Stage: s.stage}
	}

	s.stage = models.StageMenu
	s.quizType = ""
	s.batch = nil
	s.position = 0
	s.answers = nil
	s.results = nil
	s.degraded = false
	return nil
}

// Reset checks that a progress reset is allowed. The stage never changes.
func (s *Session) Reset() error {
	if s.stage != models.StageMenu {
		return &TransitionError{Event: "reset", Stage: s.stage}
	}
	return nil
}

// QuestionView returns the current question with this quiz's option order
func (s *Session) QuestionView() (models.QuestionView, error) {
	current, err := s.Current()
	if err != nil {
		return models.QuestionView{}, err
	}
	return models.QuestionView{
		Number:  s.position + 1,
		Total:   len(s.batch),
		Text:    current.Question.Text,
		Options: append([]string(nil), current.ShuffledOptions...),
	}, nil
}

// ResultsView returns the per-question outcomes and the score
func (s *Session) ResultsView() (models.ResultsView, error) {
	if s.stage != models.StageResults {
		return models.ResultsView{}, &TransitionError{Event: "results", Stage: s.stage}
	}

	score := 0
	for _, r := range s.results {
		if r.IsCorrect {
			score++
		}
	}
	return models.ResultsView{
		QuizType: s.quizType,
		Results:  s.Results(),
		Score:    score,
		Total:    len(s.results),
	}, nil
}
