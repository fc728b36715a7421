package models

import "fmt"

const (
	// MinOptions and MaxOptions bound the answer options of a question
	MinOptions = 2
	MaxOptions = 5

	// BatchSize is the number of questions in one quiz
	BatchSize = 10
)

// ErrBatchSize is returned when a quiz batch does not hold exactly BatchSize questions
var ErrBatchSize = fmt.Errorf("quiz batch must hold exactly %d questions", BatchSize)

// Question is one multiple-choice question in a user's store or the master set
type Question struct {
	ID                int64    `json:"id"`
	Text              string   `json:"question" validate:"required"`
	Options           []string `json:"options" validate:"min=2,max=5,dive,required"`
	Answer            string   `json:"answer" validate:"required"`
	HasAsked          bool     `json:"has_asked"`
	AnsweredCorrectly bool     `json:"answered_correctly"`
}

// Filter selects which questions of a store are eligible for sampling
type Filter int

const (
	FilterAll Filter = iota
	FilterUnasked
	FilterIncorrect
)

func (f Filter) String() string {
	switch f {
	case FilterAll:
		return "all"
	case FilterUnasked:
		return "unasked"
	case FilterIncorrect:
		return "incorrect"
	default:
		return fmt.Sprintf("filter(%d)", int(f))
	}
}

// Matches reports whether q satisfies the filter predicate
func (f Filter) Matches(q Question) bool {
	switch f {
	case FilterAll:
		return true
	case FilterUnasked:
		return !q.HasAsked
	case FilterIncorrect:
		return q.HasAsked && !q.AnsweredCorrectly
	default:
		return false
	}
}

// Quiz type labels offered on the menu
const (
	QuizTypeRandom    = "Random Quiz"
	QuizTypeUntested  = "Untested Questions Quiz"
	QuizTypeIncorrect = "Incorrect Questions Quiz"
)

// QuizTypes lists the menu labels in display order
var QuizTypes = []string{QuizTypeRandom, QuizTypeUntested, QuizTypeIncorrect}

var quizTypeFilters = map[string]Filter{
	QuizTypeRandom:    FilterAll,
	QuizTypeUntested:  FilterUnasked,
	QuizTypeIncorrect: FilterIncorrect,
}

// FilterForQuizType maps a menu label to its store filter
func FilterForQuizType(quizType string) (Filter, bool) {
	f, ok := quizTypeFilters[quizType]
	return f, ok
}

// Progress holds raw per-user counts shown on the menu
type Progress struct {
	Total     int `json:"total"`
	Asked     int `json:"asked"`
	Correct   int `json:"correct"`
	Unasked   int `json:"unasked"`
	Incorrect int `json:"incorrect"`
}
