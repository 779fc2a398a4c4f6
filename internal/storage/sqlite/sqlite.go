// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/tallyapp/tally/internal/models"
	"github.com/tallyapp/tally/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// timeLayout is the persisted timestamp format. RFC3339Nano keeps full
// precision so a save/load round-trip reproduces timestamps exactly.
const timeLayout = time.RFC3339Nano

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver. The foreign_keys pragma is
	// per-connection in SQLite, so it goes in the DSN where the driver
	// applies it to every pooled connection, not just the first one.
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LoadParticipants retrieves the full participant collection in insertion order.
func (s *SQLiteStore) LoadParticipants(ctx context.Context) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, amount FROM participants ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query participants: %v", storage.ErrPersistence, err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.Amount); err != nil {
			return nil, fmt.Errorf("%w: failed to scan participant: %v", storage.ErrPersistence, err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate participants: %v", storage.ErrPersistence, err)
	}

	for i := range participants {
		txs, err := s.loadTransactions(ctx, participants[i].ID)
		if err != nil {
			return nil, err
		}
		participants[i].Transactions = txs
	}

	return participants, nil
}

func (s *SQLiteStore) loadTransactions(ctx context.Context, participantID int64) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT change, note, created_at FROM transactions WHERE participant_id = ? ORDER BY seq",
		participantID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query transactions: %v", storage.ErrPersistence, err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var createdAt string
		if err := rows.Scan(&tx.Change, &tx.Note, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan transaction: %v", storage.ErrPersistence, err)
		}
		tx.Timestamp, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse timestamp %q: %v", storage.ErrPersistence, createdAt, err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate transactions: %v", storage.ErrPersistence, err)
	}

	return txs, nil
}

// SaveParticipants replaces the stored collection with the given one.
// The replace runs in a single SQL transaction so a failure leaves the
// previous contents intact.
func (s *SQLiteStore) SaveParticipants(ctx context.Context, participants []models.Participant) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", storage.ErrPersistence, err)
	}
	defer tx.Rollback()

	// Clear child rows explicitly instead of leaning on ON DELETE CASCADE:
	// save correctness must not depend on a connection-level pragma.
	if _, err := tx.ExecContext(ctx, "DELETE FROM transactions"); err != nil {
		return fmt.Errorf("%w: failed to clear transactions: %v", storage.ErrPersistence, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM participants"); err != nil {
		return fmt.Errorf("%w: failed to clear participants: %v", storage.ErrPersistence, err)
	}

	for pos, p := range participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO participants (id, name, amount, position) VALUES (?, ?, ?, ?)",
			p.ID, p.Name, p.Amount, pos,
		)
		if err != nil {
			return fmt.Errorf("%w: failed to insert participant: %v", storage.ErrPersistence, err)
		}

		for seq, t := range p.Transactions {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO transactions (participant_id, seq, change, note, created_at) VALUES (?, ?, ?, ?, ?)",
				p.ID, seq, t.Change, t.Note, t.Timestamp.Format(timeLayout),
			)
			if err != nil {
				return fmt.Errorf("%w: failed to insert transaction: %v", storage.ErrPersistence, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit: %v", storage.ErrPersistence, err)
	}

	return nil
}

// LoadEditors retrieves the authorized-editor identities in insertion order.
func (s *SQLiteStore) LoadEditors(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT identity FROM editors ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query editors: %v", storage.ErrPersistence, err)
	}
	defer rows.Close()

	var editors []string
	for rows.Next() {
		var identity string
		if err := rows.Scan(&identity); err != nil {
			return nil, fmt.Errorf("%w: failed to scan editor: %v", storage.ErrPersistence, err)
		}
		editors = append(editors, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate editors: %v", storage.ErrPersistence, err)
	}

	return editors, nil
}

// SaveEditors replaces the stored authorized-editor identities.
func (s *SQLiteStore) SaveEditors(ctx context.Context, editors []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", storage.ErrPersistence, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM editors"); err != nil {
		return fmt.Errorf("%w: failed to clear editors: %v", storage.ErrPersistence, err)
	}

	for pos, identity := range editors {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO editors (identity, position) VALUES (?, ?)",
			identity, pos,
		)
		if err != nil {
			return fmt.Errorf("%w: failed to insert editor: %v", storage.ErrPersistence, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit: %v", storage.ErrPersistence, err)
	}

	return nil
}
