package validation

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/go-playground/validator.v9"

	"quizmaster/internal/models"
)

// ErrInvalidQuestion is matched by every question validation failure
var ErrInvalidQuestion = errors.New("invalid question")

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// QuestionError describes why a stored question cannot be used
type QuestionError struct {
	ID     int64
	Reason string
}

func (e *QuestionError) Error() string {
	return fmt.Sprintf("question %d: %s", e.ID, e.Reason)
}

func (e *QuestionError) Is(target error) bool {
	return target == ErrInvalidQuestion
}

// validator.Validate caches struct metadata and is safe for concurrent use
var validate = validator.New()

// ValidateQuestion checks text, option count, blank options, and that the
// answer appears exactly once among the options.
func ValidateQuestion(q models.Question) error {
	if err := validate.Struct(q); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &QuestionError{ID: q.ID, Reason: fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())}
		}
		return &QuestionError{ID: q.ID, Reason: err.Error()}
	}

	matches := 0
	for _, opt := range q.Options {
		if opt == q.Answer {
			matches++
		}
	}
	switch matches {
	case 0:
		return &QuestionError{ID: q.ID, Reason: "answer is not one of the options"}
	case 1:
		return nil
	default:
		return &QuestionError{ID: q.ID, Reason: "answer appears more than once among the options"}
	}
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if err := validate.Var(email, "email"); err != nil {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}
