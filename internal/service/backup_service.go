package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"quizmaster/internal/database"
	"quizmaster/internal/models"
	"quizmaster/internal/repository"
	"quizmaster/internal/validation"
)

const (
	backupVersion = "1.0"
	SourceMaster  = "master"
)

// BackupData is the JSON layout of an exported question set
type BackupData struct {
	Version      string            `json:"version"`
	ExportedAt   time.Time         `json:"exported_at"`
	DatabaseType string            `json:"database_type"`
	Source       string            `json:"source"`
	Questions    []models.Question `json:"questions"`
}

// UserQuestions reads a single user's question store
type UserQuestions interface {
	Questions(userID string) ([]models.Question, error)
}

// ImportSummary counts what an import did
type ImportSummary struct {
	Imported  int
	Invalid   int
	Duplicate int
}

// BackupService handles export and import of question sets
type BackupService struct {
	db     *database.DB
	master *repository.QuestionRepository
	users  UserQuestions
}

// NewBackupService creates a new backup service over the master set in db.
// users may be nil when per-user export is not needed.
func NewBackupService(db *database.DB, users UserQuestions) (*BackupService, error) {
	master, err := repository.NewQuestionRepository(db, repository.MasterTable)
	if err != nil {
		return nil, err
	}
	return &BackupService{db: db, master: master, users: users}, nil
}

// Master returns the master set repository
func (s *BackupService) Master() *repository.QuestionRepository {
	return s.master
}

// Export writes the master set to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting master set export...")

	questions, err := s.master.GetAll()
	if err != nil {
		return fmt.Errorf("failed to read master set: %w", err)
	}
	return s.writeFile(outputPath, SourceMaster, questions)
}

// ExportUser writes one user's question store, flags included, to a file
func (s *BackupService) ExportUser(userID, outputPath string) error {
	if s.users == nil {
		return errors.New("user export is not configured")
	}
	log.Printf("Starting export of question store for %s...", userID)

	questions, err := s.users.Questions(userID)
	if err != nil {
		return fmt.Errorf("failed to read question store for %s: %w", userID, err)
	}
	return s.writeFile(outputPath, "user:"+userID, questions)
}

func (s *BackupService) writeFile(outputPath, source string, questions []models.Question) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.encode(file, source, questions); err != nil {
		return err
	}

	log.Printf("Exported %d questions (%s) to %s", len(questions), source, outputPath)
	return nil
}

func (s *BackupService) encode(w io.Writer, source string, questions []models.Question) error {
	if questions == nil {
		questions = []models.Question{}
	}
	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now(),
		DatabaseType: s.db.GetDialect().DriverName(),
		Source:       source,
		Questions:    questions,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	return nil
}

// Import loads a backup file into the master set
func (s *BackupService) Import(inputPath string) (ImportSummary, error) {
	log.Printf("Starting master set import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader loads questions into the master set. The input is either
// a backup document or a bare JSON array of questions. Invalid questions and
// ids already present are skipped; the rest are inserted in one transaction.
// Questions without an id are numbered after the highest existing id.
func (s *BackupService) ImportFromReader(reader io.Reader) (ImportSummary, error) {
	var summary ImportSummary

	questions, err := decodeQuestions(reader)
	if err != nil {
		return summary, err
	}

	err = s.db.WithTx(func(tx *database.Tx) error {
		repo := s.master.WithDB(tx)

		existing, err := repo.GetAll()
		if err != nil {
			return fmt.Errorf("failed to read master set: %w", err)
		}
		seen := make(map[int64]bool, len(existing))
		var nextID int64
		for _, q := range existing {
			seen[q.ID] = true
			if q.ID > nextID {
				nextID = q.ID
			}
		}
		for _, q := range questions {
			if q.ID > nextID {
				nextID = q.ID
			}
		}

		var accepted []models.Question
		for _, q := range questions {
			if q.ID == 0 {
				nextID++
				q.ID = nextID
			}
			if err := validation.ValidateQuestion(q); err != nil {
				log.Printf("Warning: skipping question: %v", err)
				summary.Invalid++
				continue
			}
			if seen[q.ID] {
				summary.Duplicate++
				continue
			}
			seen[q.ID] = true
			accepted = append(accepted, q)
		}

		if err := repo.InsertAll(accepted); err != nil {
			return err
		}
		summary.Imported = len(accepted)
		return nil
	})
	if err != nil {
		return ImportSummary{}, fmt.Errorf("failed to import questions: %w", err)
	}

	log.Printf("Import completed: %d imported, %d invalid, %d duplicate",
		summary.Imported, summary.Invalid, summary.Duplicate)
	return summary, nil
}

// Clear removes every question from the master set. Existing user stores
// keep their copies.
func (s *BackupService) Clear() error {
	if err := s.master.DeleteAll(); err != nil {
		return fmt.Errorf("failed to clear master set: %w", err)
	}
	log.Println("Cleared master set")
	return nil
}

// SeedIfEmpty imports seedPath into the master set when the set has no rows
func (s *BackupService) SeedIfEmpty(seedPath string) (ImportSummary, error) {
	if seedPath == "" {
		return ImportSummary{}, nil
	}

	count, err := s.master.Count()
	if err != nil {
		return ImportSummary{}, fmt.Errorf("failed to count master set: %w", err)
	}
	if count > 0 {
		return ImportSummary{}, nil
	}

	log.Printf("Master set is empty, seeding from %s", seedPath)
	return s.Import(seedPath)
}

func decodeQuestions(reader io.Reader) ([]models.Question, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var questions []models.Question
		if err := json.Unmarshal(trimmed, &questions); err != nil {
			return nil, fmt.Errorf("failed to decode questions: %w", err)
		}
		return questions, nil
	}

	var backup BackupData
	if err := json.Unmarshal(trimmed, &backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	log.Printf("Backup version: %s, source: %s, exported at: %s", backup.Version, backup.Source, backup.ExportedAt)
	return backup.Questions, nil
}
