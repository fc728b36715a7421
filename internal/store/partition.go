package store

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"

	"quizmaster/internal/database"
	"quizmaster/internal/repository"
)

// Partition locates and opens one user's question storage
type Partition interface {
	// Acquire opens the user's storage. The returned release func must be
	// called exactly once when the operation finishes.
	Acquire(userID string) (db *database.DB, table string, release func(), err error)
}

// PartitionKey derives a short, filesystem- and SQL-safe key from an opaque
// user token. The mapping is stable across processes.
func PartitionKey(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("empty user id")
	}
	sum := blake2b.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:10]), nil
}

// SQLitePartition keeps each user's questions in their own SQLite file
type SQLitePartition struct {
	dir string
}

// NewSQLitePartition creates the store directory if needed
func NewSQLitePartition(dir string) (*SQLitePartition, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create user store directory: %w", err)
	}
	return &SQLitePartition{dir: dir}, nil
}

// Path returns the database file for a user
func (p *SQLitePartition) Path(userID string) (string, error) {
	key, err := PartitionKey(userID)
	if err != nil {
		return "", err
	}
	return filepath.Join(p.dir, key+"_questions.db"), nil
}

func (p *SQLitePartition) Acquire(userID string) (*database.DB, string, func(), error) {
	path, err := p.Path(userID)
	if err != nil {
		return nil, "", nil, err
	}

	db, err := database.Initialize(path)
	if err != nil {
		return nil, "", nil, err
	}

	release := func() {
		db.Close()
	}
	return db, repository.MasterTable, release, nil
}

// SharedPartition keeps each user's questions in their own table on a shared
// server database (Postgres or MySQL). The pool outlives every operation, so
// release is a no-op.
type SharedPartition struct {
	db *database.DB
}

// NewSharedPartition creates a partition on an already opened database
func NewSharedPartition(db *database.DB) *SharedPartition {
	return &SharedPartition{db: db}
}

// Table returns the table name for a user
func (p *SharedPartition) Table(userID string) (string, error) {
	key, err := PartitionKey(userID)
	if err != nil {
		return "", err
	}
	return repository.MasterTable + "_" + key, nil
}

func (p *SharedPartition) Acquire(userID string) (*database.DB, string, func(), error) {
	table, err := p.Table(userID)
	if err != nil {
		return nil, "", nil, err
	}
	return p.db, table, func() {}, nil
}

// NewPartition picks the partition for a database type: per-user SQLite files
// under userStoreDir for sqlite, per-user tables on db otherwise
func NewPartition(databaseType, userStoreDir string, db *database.DB) (Partition, error) {
	switch databaseType {
	case "", "sqlite", "sqlite3":
		partition, err := NewSQLitePartition(userStoreDir)
		if err != nil {
			return nil, err
		}
		log.Printf("User question stores: one SQLite file per user in %s", userStoreDir)
		return partition, nil
	case "postgres", "postgresql", "mysql":
		log.Printf("User question stores: one table per user on %s", databaseType)
		return NewSharedPartition(db), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", databaseType)
	}
}
