package service

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quizmaster/internal/database"
	"quizmaster/internal/models"
)

func newTestBackupService(t *testing.T, users UserQuestions) *BackupService {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "master.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	svc, err := NewBackupService(db, users)
	if err != nil {
		t.Fatalf("NewBackupService() error = %v", err)
	}
	return svc
}

type staticUsers map[string][]models.Question

func (u staticUsers) Questions(userID string) ([]models.Question, error) {
	return u[userID], nil
}

func TestImportSkipsInvalidAndDuplicates(t *testing.T) {
	svc := newTestBackupService(t, nil)

	if err := svc.Master().InsertAll(makeQuestions(2)); err != nil {
		t.Fatalf("InsertAll() error = %v", err)
	}

	input := `[
		{"id": 2, "question": "dup", "options": ["a", "b"], "answer": "a"},
		{"id": 3, "question": "Three?", "options": ["3", "4"], "answer": "3"},
		{"id": 4, "question": "Bad answer", "options": ["x", "y"], "answer": "z"},
		{"question": "No id", "options": ["yes", "no"], "answer": "yes"}
	]`

	summary, err := svc.ImportFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportFromReader() error = %v", err)
	}
	if summary.Imported != 2 || summary.Invalid != 1 || summary.Duplicate != 1 {
		t.Errorf("summary = %+v, want 2 imported, 1 invalid, 1 duplicate", summary)
	}

	all, err := svc.Master().GetAll()
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("master has %d questions, want 4", len(all))
	}
	if all[3].ID != 5 || all[3].Text != "No id" {
		t.Errorf("numbered question = %+v, want id 5", all[3])
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newTestBackupService(t, nil)
	if err := src.Master().InsertAll(makeQuestions(12)); err != nil {
		t.Fatalf("InsertAll() error = %v", err)
	}

	out := filepath.Join(t.TempDir(), "master.json")
	if err := src.Export(out); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if backup.Source != SourceMaster || backup.DatabaseType != "sqlite3" || len(backup.Questions) != 12 {
		t.Errorf("backup header = %s/%s with %d questions", backup.Source, backup.DatabaseType, len(backup.Questions))
	}

	dst := newTestBackupService(t, nil)
	summary, err := dst.Import(out)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if summary.Imported != 12 {
		t.Errorf("Imported = %d, want 12", summary.Imported)
	}
}

func TestExportUser(t *testing.T) {
	questions := makeQuestions(3)
	questions[1].HasAsked = true
	svc := newTestBackupService(t, staticUsers{"abc12345": questions})

	out := filepath.Join(t.TempDir(), "user.json")
	if err := svc.ExportUser("abc12345", out); err != nil {
		t.Fatalf("ExportUser() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if backup.Source != "user:abc12345" || len(backup.Questions) != 3 || !backup.Questions[1].HasAsked {
		t.Errorf("unexpected user export: %+v", backup)
	}
}

func TestExportUserNotConfigured(t *testing.T) {
	svc := newTestBackupService(t, nil)
	if err := svc.ExportUser("abc12345", filepath.Join(t.TempDir(), "x.json")); err == nil {
		t.Error("ExportUser() expected error without a user source")
	}
}

func TestSeedIfEmpty(t *testing.T) {
	svc := newTestBackupService(t, nil)

	seed := filepath.Join(t.TempDir(), "seed.json")
	data, _ := json.Marshal(makeQuestions(4))
	if err := os.WriteFile(seed, data, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	summary, err := svc.SeedIfEmpty(seed)
	if err != nil {
		t.Fatalf("SeedIfEmpty() error = %v", err)
	}
	if summary.Imported != 4 {
		t.Errorf("Imported = %d, want 4", summary.Imported)
	}

	summary, err = svc.SeedIfEmpty(seed)
	if err != nil {
		t.Fatalf("second SeedIfEmpty() error = %v", err)
	}
	if summary.Imported != 0 {
		t.Errorf("second seed imported %d, want 0", summary.Imported)
	}

	if err := svc.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	count, _ := svc.Master().Count()
	if count != 0 {
		t.Errorf("Count() after Clear = %d, want 0", count)
	}
}

func TestImportRejectsMalformedJSON(t *testing.T) {
	svc := newTestBackupService(t, nil)
	if _, err := svc.ImportFromReader(strings.NewReader("{not json")); err == nil {
		t.Error("ImportFromReader() expected error for malformed input")
	}
}

func TestBundledSeedFileIsValid(t *testing.T) {
	svc := newTestBackupService(t, nil)

	summary, err := svc.Import("../../data/questions.json")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if summary.Invalid != 0 || summary.Duplicate != 0 {
		t.Errorf("bundled seed has problems: %+v", summary)
	}
	if summary.Imported < models.BatchSize {
		t.Errorf("bundled seed has %d questions, need at least %d", summary.Imported, models.BatchSize)
	}
}
