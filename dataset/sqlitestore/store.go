// Package sqlitestore persists the latest dataset in a SQLite database.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofu/webnav/dataset"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS datasets (
	id          TEXT PRIMARY KEY,
	uploaded_at INTEGER NOT NULL,
	checksum    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS records (
	dataset_id TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
	section    TEXT NOT NULL,
	position   INTEGER NOT NULL,
	body       TEXT NOT NULL,
	PRIMARY KEY (dataset_id, section, position)
);
`

// Store is a dataset.Store backed by SQLite.
type Store struct {
	db *sql.DB
}

var _ dataset.Store = (*Store)(nil)

// Open opens, and creates if needed, the database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err = db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Replace deletes all stored data and inserts d, in one transaction.
func (s *Store) Replace(ctx context.Context, d *dataset.Dataset) error {
	if d == nil {
		return fmt.Errorf("%w: nil dataset", dataset.ErrInvalidFormat)
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
			return fmt.Errorf("clear records: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM datasets`); err != nil {
			return fmt.Errorf("clear datasets: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO datasets (id, uploaded_at, checksum) VALUES (?, ?, ?)`,
			d.ID, d.UploadedAt.UTC().UnixMilli(), d.Checksum,
		); err != nil {
			return fmt.Errorf("insert dataset: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO records (dataset_id, section, position, body) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert record: %w", err)
		}
		defer stmt.Close()
		for _, sec := range dataset.Sections {
			for i, r := range d.Section(sec) {
				body, err := json.Marshal(r)
				if err != nil {
					return fmt.Errorf("encode %s[%d]: %w", sec, i, err)
				}
				if _, err = stmt.ExecContext(ctx, d.ID, string(sec), i, string(body)); err != nil {
					return fmt.Errorf("insert %s[%d]: %w", sec, i, err)
				}
			}
		}
		return nil
	})
}

// Latest loads the stored dataset, or returns dataset.ErrNoDataset.
func (s *Store) Latest(ctx context.Context) (*dataset.Dataset, error) {
	var d dataset.Dataset
	var uploadedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, uploaded_at, checksum FROM datasets ORDER BY uploaded_at DESC LIMIT 1`,
	).Scan(&d.ID, &uploadedAt, &d.Checksum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dataset.ErrNoDataset
	}
	if err != nil {
		return nil, fmt.Errorf("get dataset: %w", err)
	}
	d.UploadedAt = time.UnixMilli(uploadedAt).UTC()
	d.Hotels, d.Guests, d.Reservations = []dataset.Record{}, []dataset.Record{}, []dataset.Record{}

	rows, err := s.db.QueryContext(ctx,
		`SELECT section, body FROM records WHERE dataset_id = ? ORDER BY section, position`, d.ID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var section, body string
		if err = rows.Scan(&section, &body); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		var r dataset.Record
		if err = json.Unmarshal([]byte(body), &r); err != nil {
			return nil, fmt.Errorf("decode %s record: %w", section, err)
		}
		switch dataset.Section(section) {
		case dataset.Hotels:
			d.Hotels = append(d.Hotels, r)
		case dataset.Guests:
			d.Guests = append(d.Guests, r)
		case dataset.Reservations:
			d.Reservations = append(d.Reservations, r)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return &d, nil
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
