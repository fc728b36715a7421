package repository

import (
	"database/sql"
	"fmt"

	"quizmaster/internal/database"
	"quizmaster/internal/models"
)

// MasterTable is the shared question set every user store is cloned from
const MasterTable = "questions"

const questionColumns = `id, question, option_1, option_2, option_3, option_4, option_5,
	answer, has_asked, answered_correctly`

// QuestionRepository handles question table operations. The same repository
// type serves the master set and every per-user store; only the table differs.
type QuestionRepository struct {
	db    database.DBTX
	table string
}

// NewQuestionRepository creates a repository bound to one question table
func NewQuestionRepository(db database.DBTX, table string) (*QuestionRepository, error) {
	if !database.ValidIdentifier(table) {
		return nil, fmt.Errorf("invalid question table name %q", table)
	}
	return &QuestionRepository{db: db, table: table}, nil
}

// WithDB returns a repository for the same table on another handle, typically a transaction
func (r *QuestionRepository) WithDB(db database.DBTX) *QuestionRepository {
	return &QuestionRepository{db: db, table: r.table}
}

// Table returns the table name
func (r *QuestionRepository) Table() string {
	return r.table
}

// CreateTable creates the question table if it does not exist
func (r *QuestionRepository) CreateTable() error {
	_, err := r.db.Exec(r.db.GetDialect().CreateQuestionsTableQuery(r.table))
	return err
}

// Count returns the number of questions in the table
func (r *QuestionRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM " + r.table).Scan(&count)
	return count, err
}

// GetAll retrieves every question ordered by id
func (r *QuestionRepository) GetAll() ([]models.Question, error) {
	return r.query("SELECT " + questionColumns + " FROM " + r.table + " ORDER BY id")
}

// GetByFilter retrieves every question matching the filter, ordered by id
func (r *QuestionRepository) GetByFilter(filter models.Filter) ([]models.Question, error) {
	d := r.db.GetDialect()
	var where string

	switch filter {
	case models.FilterAll:
		return r.GetAll()
	case models.FilterUnasked:
		where = "COALESCE(has_asked, " + d.BoolValue(false) + ") = " + d.BoolValue(false)
	case models.FilterIncorrect:
		where = "has_asked = " + d.BoolValue(true) +
			" AND COALESCE(answered_correctly, " + d.BoolValue(false) + ") = " + d.BoolValue(false)
	default:
		return nil, fmt.Errorf("unknown question filter %v", filter)
	}

	return r.query("SELECT " + questionColumns + " FROM " + r.table + " WHERE " + where + " ORDER BY id")
}

// GetByID retrieves a single question
func (r *QuestionRepository) GetByID(id int64) (*models.Question, error) {
	row := r.db.QueryRow("SELECT "+questionColumns+" FROM "+r.table+" WHERE id = ?", id)
	q, err := scanQuestion(row)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// GetProgress returns raw exposure and correctness counts
func (r *QuestionRepository) GetProgress() (models.Progress, error) {
	d := r.db.GetDialect()
	asked := "has_asked = " + d.BoolValue(true)
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN ` + asked + ` THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN ` + asked + ` AND answered_correctly = ` + d.BoolValue(true) + ` THEN 1 ELSE 0 END), 0)
		FROM ` + r.table

	var p models.Progress
	if err := r.db.QueryRow(query).Scan(&p.Total, &p.Asked, &p.Correct); err != nil {
		return p, err
	}
	p.Unasked = p.Total - p.Asked
	p.Incorrect = p.Asked - p.Correct
	return p, nil
}

// InsertAll inserts questions keeping their ids and flags. Callers wanting
// all-or-nothing behaviour pass a transaction-bound repository.
func (r *QuestionRepository) InsertAll(questions []models.Question) error {
	query := "INSERT INTO " + r.table + " (" + questionColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"

	for _, q := range questions {
		opts := optionColumns(q.Options)
		_, err := r.db.Exec(query,
			q.ID,
			q.Text,
			opts[0], opts[1], opts[2], opts[3], opts[4],
			q.Answer,
			q.HasAsked,
			q.AnsweredCorrectly,
		)
		if err != nil {
			return fmt.Errorf("failed to insert question %d: %w", q.ID, err)
		}
	}
	return nil
}

// DeleteAll removes every question from the table
func (r *QuestionRepository) DeleteAll() error {
	_, err := r.db.Exec("DELETE FROM " + r.table)
	return err
}

// RecordAnswer marks a question as asked with the given outcome.
// Returns sql.ErrNoRows when no question has that id.
func (r *QuestionRepository) RecordAnswer(id int64, correct bool) error {
	query := "UPDATE " + r.table + " SET has_asked = ?, answered_correctly = ? WHERE id = ?"

	result, err := r.db.Exec(query, true, correct, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// Some drivers count only changed rows
	_, err = r.GetByID(id)
	return err
}

// ResetAll clears both flags on every question
func (r *QuestionRepository) ResetAll() error {
	query := "UPDATE " + r.table + " SET has_asked = ?, answered_correctly = ?"
	_, err := r.db.Exec(query, false, false)
	return err
}

func (r *QuestionRepository) query(query string, args ...interface{}) ([]models.Question, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}

	return questions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuestion(row rowScanner) (models.Question, error) {
	var q models.Question
	var opts [models.MaxOptions]sql.NullString
	var hasAsked, answeredCorrectly sql.NullBool

	err := row.Scan(
		&q.ID,
		&q.Text,
		&opts[0], &opts[1], &opts[2], &opts[3], &opts[4],
		&q.Answer,
		&hasAsked,
		&answeredCorrectly,
	)
	if err != nil {
		return q, err
	}

	// Unused option columns are NULL or blank; keep only the filled ones
	for _, opt := range opts {
		if opt.Valid && opt.String != "" {
			q.Options = append(q.Options, opt.String)
		}
	}
	q.HasAsked = hasAsked.Valid && hasAsked.Bool
	q.AnsweredCorrectly = answeredCorrectly.Valid && answeredCorrectly.Bool

	return q, nil
}

// optionColumns spreads options over the fixed option_1..option_5 columns
func optionColumns(options []string) [models.MaxOptions]sql.NullString {
	var cols [models.MaxOptions]sql.NullString
	for i := 0; i < len(options) && i < models.MaxOptions; i++ {
		cols[i] = sql.NullString{String: options[i], Valid: true}
	}
	return cols
}
