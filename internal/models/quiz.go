package models

// Stage is the session's current phase
type Stage string

const (
	StageMenu    Stage = "menu"
	StageQuiz    Stage = "quiz"
	StageResults Stage = "results"
)

// BatchQuestion is a question with this quiz's presentation order of options.
// ShuffledOptions is a copy; Question.Options keeps the stored order.
type BatchQuestion struct {
	Question        Question
	ShuffledOptions []string
}

// Batch is the ordered set of questions making up one quiz
type Batch []BatchQuestion

// QuestionResult records the outcome of one submitted answer
type QuestionResult struct {
	QuestionID    int64  `json:"question_id"`
	Question      string `json:"question"`
	CorrectAnswer string `json:"correct_answer"`
	UserAnswer    string `json:"user_answer"`
	IsCorrect     bool   `json:"is_correct"`
}

// QuestionView is what the host shows while a quiz is running
type QuestionView struct {
	Number  int      `json:"number"` // 1-based
	Total   int      `json:"total"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// ResultsView is the breakdown shown once a quiz is complete
type ResultsView struct {
	QuizType string           `json:"quiz_type"`
	Results  []QuestionResult `json:"results"`
	Score    int              `json:"score"`
	Total    int              `json:"total"`
}
