package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"quizmaster/internal/database"
	"quizmaster/internal/models"
	"quizmaster/internal/quiz"
	"quizmaster/internal/repository"
	"quizmaster/internal/validation"
)

// MasterSource supplies the shared question set new stores are cloned from
type MasterSource interface {
	GetAll() ([]models.Question, error)
}

// QuestionStore is the per-user question bank. Storage is acquired and
// released around every call; nothing is held between calls.
type QuestionStore struct {
	partition Partition
	master    MasterSource
	rng       quiz.Shuffler
}

// New creates a question store. A nil rng selects quiz.DefaultShuffler.
func New(partition Partition, master MasterSource, rng quiz.Shuffler) *QuestionStore {
	if rng == nil {
		rng = quiz.DefaultShuffler()
	}
	return &QuestionStore{
		partition: partition,
		master:    master,
		rng:       rng,
	}
}

// EnsureInitialized creates the user's table and clones the master set into
// it when it is empty. A store that already has rows is never re-seeded.
func (s *QuestionStore) EnsureInitialized(userID string) error {
	return s.withUser(userID, "initialize", func(*repository.QuestionRepository) error {
		return nil
	})
}

// Query returns up to models.BatchSize questions matching filter, chosen
// uniformly at random without replacement. Rows that fail validation are
// never returned.
func (s *QuestionStore) Query(userID string, filter models.Filter) ([]models.Question, error) {
	var picked []models.Question

	err := s.withUser(userID, "query", func(repo *repository.QuestionRepository) error {
		matching, err := repo.GetByFilter(filter)
		if err != nil {
			return err
		}
		picked = quiz.Pick(s.rng, usable(matching), models.BatchSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return picked, nil
}

// RecordAnswer marks a question as asked with the given outcome
func (s *QuestionStore) RecordAnswer(userID string, questionID int64, correct bool) error {
	var notFound bool

	err := s.withUser(userID, "record answer", func(repo *repository.QuestionRepository) error {
		err := repo.RecordAnswer(questionID, correct)
		if errors.Is(err, sql.ErrNoRows) {
			notFound = true
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	if notFound {
		return fmt.Errorf("%w: id %d", ErrQuestionNotFound, questionID)
	}
	return nil
}

// ResetAll clears exposure and correctness on every question. Either every
// row is reset or none is.
func (s *QuestionStore) ResetAll(userID string) error {
	return s.withUserTx(userID, "reset", func(repo *repository.QuestionRepository) error {
		return repo.ResetAll()
	})
}

// Questions returns the user's whole store ordered by id
func (s *QuestionStore) Questions(userID string) ([]models.Question, error) {
	var all []models.Question
	err := s.withUser(userID, "list", func(repo *repository.QuestionRepository) error {
		var err error
		all, err = repo.GetAll()
		return err
	})
	return all, err
}

// Progress returns the user's raw exposure and correctness counts
func (s *QuestionStore) Progress(userID string) (models.Progress, error) {
	var progress models.Progress
	err := s.withUser(userID, "progress", func(repo *repository.QuestionRepository) error {
		var err error
		progress, err = repo.GetProgress()
		return err
	})
	return progress, err
}

func (s *QuestionStore) withUser(userID, op string, fn func(repo *repository.QuestionRepository) error) error {
	_, repo, release, err := s.open(userID, op)
	if err != nil {
		return err
	}
	defer release()

	if err := fn(repo); err != nil {
		return unavailable(op, err)
	}
	return nil
}

func (s *QuestionStore) withUserTx(userID, op string, fn func(repo *repository.QuestionRepository) error) error {
	db, repo, release, err := s.open(userID, op)
	if err != nil {
		return err
	}
	defer release()

	err = db.WithTx(func(tx *database.Tx) error {
		return fn(repo.WithDB(tx))
	})
	if err != nil {
		return unavailable(op, err)
	}
	return nil
}

// open acquires the user's storage and makes sure the table exists and has
// been seeded. On error nothing is left open.
func (s *QuestionStore) open(userID, op string) (*database.DB, *repository.QuestionRepository, func(), error) {
	db, table, release, err := s.partition.Acquire(userID)
	if err != nil {
		return nil, nil, nil, unavailable(op, fmt.Errorf("failed to open question store: %w", err))
	}

	repo, err := repository.NewQuestionRepository(db, table)
	if err == nil {
		err = s.seed(db, repo)
	}
	if err != nil {
		release()
		return nil, nil, nil, unavailable(op, err)
	}

	return db, repo, release, nil
}

func (s *QuestionStore) seed(db *database.DB, repo *repository.QuestionRepository) error {
	if err := repo.CreateTable(); err != nil {
		return fmt.Errorf("failed to create question table: %w", err)
	}

	count, err := repo.Count()
	if err != nil {
		return fmt.Errorf("failed to count questions: %w", err)
	}
	if count > 0 {
		return nil
	}

	master, err := s.master.GetAll()
	if err != nil {
		return fmt.Errorf("failed to load master questions: %w", err)
	}

	questions := usable(master)
	if len(questions) == 0 {
		return nil
	}

	// Count again inside the transaction; the clone must happen at most once
	err = db.WithTx(func(tx *database.Tx) error {
		txRepo := repo.WithDB(tx)
		count, err := txRepo.Count()
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return txRepo.InsertAll(questions)
	})
	if err != nil {
		return fmt.Errorf("failed to clone master questions: %w", err)
	}

	log.Printf("Seeded question store %s with %d questions", repo.Table(), len(questions))
	return nil
}

// usable drops questions that fail validation, logging each one
func usable(questions []models.Question) []models.Question {
	valid := questions[:0:0]
	for _, q := range questions {
		if err := validation.ValidateQuestion(q); err != nil {
			log.Printf("Warning: skipping %v", err)
			continue
		}
		valid = append(valid, q)
	}
	return valid
}
