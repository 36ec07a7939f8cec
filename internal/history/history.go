// Package history is an optional, append-only run ledger: one row per
// translated file (path, content hashes, outcome, timestamp). It supplements
// the spec's run-summary reporting (spec.md's CLI only prints to stdout) the
// way a batch tool naturally grows a durable record across invocations —
// grounded on the teacher's gorm+sqlite connection/migration pattern
// (db/sqlite.go), swapped to the pure-Go glebarez/sqlite driver so this
// feature never needs cgo.
package history

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Row is one translated file's outcome, persisted when a ledger path is
// configured (--history).
type Row struct {
	ID         uint `gorm:"primarykey"`
	RunID      string
	Path       string
	InputSHA1  string
	OutputSHA1 string
	Success    bool
	ErrorCode  string
	CreatedAt  time.Time
}

// Ledger wraps a gorm connection scoped to one run.
type Ledger struct {
	db    *gorm.DB
	RunID string
}

// Open connects to (and migrates) the SQLite file at path. Empty path
// disables the ledger entirely — callers should check for a nil Ledger
// rather than opening one against an empty DSN.
func Open(path string) (*Ledger, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("history: opening ledger %q: %w", path, err)
	}
	if err := db.AutoMigrate(&Row{}); err != nil {
		return nil, fmt.Errorf("history: migrating ledger %q: %w", path, err)
	}
	return &Ledger{db: db, RunID: uuid.NewString()}, nil
}

// Record appends one row for a single file's translation outcome.
func (l *Ledger) Record(path, inputSHA1, outputSHA1, errorCode string, success bool) error {
	row := Row{
		RunID:      l.RunID,
		Path:       path,
		InputSHA1:  inputSHA1,
		OutputSHA1: outputSHA1,
		Success:    success,
		ErrorCode:  errorCode,
		CreatedAt:  time.Now(),
	}
	return l.db.Create(&row).Error
}

// Close releases the underlying database connection.
func (l *Ledger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
