// Package store persists expense records and integration settings in a local
// bbolt database. Records are append-only and keyed by generated uuid, so
// concurrent inserts never conflict; the only mutation ever applied to an
// existing record is deletion by id.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

var (
	expensesBucket = []byte("expenses")
	settingsBucket = []byte("settings")
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("expense not found")

// Source says whether an expense arrived as a text or an audio message.
type Source string

const (
	SourceText  Source = "text"
	SourceAudio Source = "audio"
)

// Expense is a persisted expense record.
type Expense struct {
	ID               string  `json:"id"`
	PhoneNumber      string  `json:"phone_number"`
	Amount           float64 `json:"amount"`
	Description      string  `json:"description"`
	Source           Source  `json:"source"`
	MessageTimestamp string  `json:"message_timestamp"`
	CreatedAt        string  `json:"created_at"`
}

// DB wraps the bbolt handle.
type DB struct {
	db *bbolt.DB
}

// Open opens (or creates) the database at path and ensures the buckets exist.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("store.Open: create data dir: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("store.Open: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(expensesBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(settingsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store.Open: create buckets: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the underlying database.
func (s *DB) Close() error {
	return s.db.Close()
}

// InsertExpense assigns the record an id and creation timestamp (unless the
// caller already set them) and appends it.
func (s *DB) InsertExpense(e *Expense) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt == "" {
		e.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("InsertExpense: marshal: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(expensesBucket).Put([]byte(e.ID), data)
	})
}

// ListExpenses returns all records, newest first.
func (s *DB) ListExpenses() ([]*Expense, error) {
	var expenses []*Expense

	err := s.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(expensesBucket).Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var e Expense
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("ListExpenses: unmarshal %s: %w", k, err)
			}
			expenses = append(expenses, &e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(expenses, func(i, j int) bool {
		if expenses[i].CreatedAt != expenses[j].CreatedAt {
			return expenses[i].CreatedAt > expenses[j].CreatedAt
		}
		return expenses[i].ID > expenses[j].ID
	})

	return expenses, nil
}

// DeleteExpense removes a record by id.
func (s *DB) DeleteExpense(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(expensesBucket)
		if bucket.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		return bucket.Delete([]byte(id))
	})
}
