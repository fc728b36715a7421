package database

import (
	"errors"
	"path/filepath"
	"testing"
)

// TestMigrationsCreateQuestionsTable runs the shipped SQLite migrations
func TestMigrationsCreateQuestionsTable(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := Initialize(filepath.Join(t.TempDir(), "master.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	var name string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", "questions").Scan(&name)
	if err != nil {
		t.Fatalf("Table questions not found: %v", err)
	}

	// Second run is a no-op
	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Re-running migrations failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatalf("Failed to count migrations: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 recorded migration, got %d", count)
	}
}

// TestWithTx checks commit and rollback behaviour
func TestWithTx(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := Initialize(filepath.Join(t.TempDir(), "tx.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(db.Dialect.CreateQuestionsTableQuery("questions")); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	insert := "INSERT INTO questions (id, question, option_1, option_2, answer) VALUES (?, ?, ?, ?, ?)"

	err = db.WithTx(func(tx *Tx) error {
		_, err := tx.Exec(insert, 1, "2+2?", "4", "5", "4")
		return err
	})
	if err != nil {
		t.Fatalf("Committed transaction failed: %v", err)
	}

	boom := errors.New("boom")
	err = db.WithTx(func(tx *Tx) error {
		if _, err := tx.Exec(insert, 2, "3+3?", "6", "7", "6"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected rollback error to wrap boom, got %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM questions").Scan(&count); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 row after rollback, got %d", count)
	}
}
