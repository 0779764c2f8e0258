package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/phuy1125/vin2/internal/domain"
)

// SQLiteStore implements ItineraryStore using SQLite. The same database
// also backs a SessionStore, see Sessions.
type SQLiteStore struct {
	db *sql.DB
}

var (
	_ ItineraryStore = (*SQLiteStore)(nil)
	_ SessionStore   = sqliteSessions{}
)

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS itineraries (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			destination TEXT NOT NULL,
			duration TEXT NOT NULL,
			start_date DATETIME,
			days TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_itineraries_user ON itineraries(user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			state TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Create inserts a new itinerary.
func (s *SQLiteStore) Create(ctx context.Context, it *domain.Itinerary) error {
	days, err := json.Marshal(it.Days)
	if err != nil {
		return fmt.Errorf("failed to marshal days: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO itineraries (id, user_id, destination, duration, start_date, days, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.OwnerUserID, it.Destination, it.Duration, nullTime(it.StartDate), string(days), it.CreatedAt.UTC(), it.UpdatedAt.UTC())
	return err
}

// Get retrieves an itinerary by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.Itinerary, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, destination, duration, start_date, days, created_at, updated_at FROM itineraries WHERE id = ?`, id)
	it, err := scanItinerary(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("itinerary %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

// ListByOwner lists the owner's itineraries in creation order.
func (s *SQLiteStore) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Itinerary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, destination, duration, start_date, days, created_at, updated_at FROM itineraries WHERE user_id = ? ORDER BY created_at ASC, rowid ASC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Itinerary
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Replace overwrites every mutable field of an existing itinerary in one
// statement guarded by the expected updated_at.
func (s *SQLiteStore) Replace(ctx context.Context, it *domain.Itinerary, expected time.Time) error {
	days, err := json.Marshal(it.Days)
	if err != nil {
		return fmt.Errorf("failed to marshal days: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE itineraries SET destination = ?, duration = ?, start_date = ?, days = ?, updated_at = ? WHERE id = ? AND updated_at = ?`,
		it.Destination, it.Duration, nullTime(it.StartDate), string(days), it.UpdatedAt.UTC(), it.ID, expected.UTC())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var exists int
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM itineraries WHERE id = ?`, it.ID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("itinerary %s: %w", it.ID, domain.ErrNotFound)
	}
	return fmt.Errorf("itinerary %s was modified: %w", it.ID, domain.ErrConflict)
}

// Delete removes an itinerary.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM itineraries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res, "itinerary", id)
}

// GetSession loads a conversation state. Missing sessions return nil, nil.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.ConversationState, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM sessions WHERE session_id = ?`, sessionID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state domain.ConversationState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
	}
	return &state, nil
}

// SaveSession upserts a conversation state.
func (s *SQLiteStore) SaveSession(ctx context.Context, state domain.ConversationState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, user_id, state, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET user_id = excluded.user_id, state = excluded.state, updated_at = excluded.updated_at`,
		state.SessionID, state.UserID, string(raw), time.Now().UTC())
	return err
}

// DeleteSession removes a conversation state. Deleting a missing session is not an error.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID)
	return err
}

// Sessions exposes the session table as a SessionStore.
func (s *SQLiteStore) Sessions() SessionStore {
	return sqliteSessions{s}
}

type sqliteSessions struct{ s *SQLiteStore }

func (w sqliteSessions) Get(ctx context.Context, id string) (*domain.ConversationState, error) {
	return w.s.GetSession(ctx, id)
}

func (w sqliteSessions) Save(ctx context.Context, state domain.ConversationState) error {
	return w.s.SaveSession(ctx, state)
}

func (w sqliteSessions) Delete(ctx context.Context, id string) error {
	return w.s.DeleteSession(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItinerary(row rowScanner) (*domain.Itinerary, error) {
	var it domain.Itinerary
	var start sql.NullTime
	var days string
	if err := row.Scan(&it.ID, &it.OwnerUserID, &it.Destination, &it.Duration, &start, &days, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	if start.Valid {
		t := start.Time
		it.StartDate = &t
	}
	if err := json.Unmarshal([]byte(days), &it.Days); err != nil {
		return nil, fmt.Errorf("failed to unmarshal days of %s: %w", it.ID, err)
	}
	return &it, nil
}

func expectOneRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
