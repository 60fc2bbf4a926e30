// Package sqlite provides the SQLite-backed calculator store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/calcdeck/internal/calculator"
	"github.com/louisbranch/calcdeck/internal/platform/grpc/pagination"
	"github.com/louisbranch/calcdeck/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/calcdeck/internal/services/calc/filter"
	"github.com/louisbranch/calcdeck/internal/services/calc/storage"
	"github.com/louisbranch/calcdeck/internal/services/calc/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const dsnPragmas = "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

// Store persists calculator sessions and tapes in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database at path and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	sqlDB, err := sql.Open("sqlite", filepath.Clean(path)+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// stamps fills missing timestamps from each other or from the clock.
func (s *Store) stamps(session storage.Session) (time.Time, time.Time) {
	created, updated := session.CreatedAt.UTC(), session.UpdatedAt.UTC()
	switch {
	case created.IsZero() && updated.IsZero():
		created = s.now().UTC()
		updated = created
	case created.IsZero():
		created = updated
	case updated.IsZero():
		updated = created
	}
	return created, updated
}

// CreateSession inserts a new session.
func (s *Store) CreateSession(ctx context.Context, session storage.Session) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id := strings.TrimSpace(session.ID)
	if id == "" {
		return fmt.Errorf("session id is required")
	}
	created, updated := s.stamps(session)
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO sessions (
		   id, current_operand, previous_expression, pending_operator, awaiting_next, created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		session.State.Current,
		session.State.Previous,
		string(session.State.Operator),
		session.State.AwaitingNext,
		toMillis(created),
		toMillis(updated),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession returns one session by ID.
func (s *Store) GetSession(ctx context.Context, id string) (storage.Session, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Session{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.Session{}, fmt.Errorf("session id is required")
	}

	var (
		session              storage.Session
		operator             string
		createdMs, updatedMs int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, current_operand, previous_expression, pending_operator, awaiting_next, created_at, updated_at
		   FROM sessions
		  WHERE id = ?`,
		id,
	).Scan(
		&session.ID,
		&session.State.Current,
		&session.State.Previous,
		&operator,
		&session.State.AwaitingNext,
		&createdMs,
		&updatedMs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Session{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Session{}, fmt.Errorf("get session: %w", err)
	}
	session.State.Operator = calculator.Operator(operator)
	session.CreatedAt = fromMillis(createdMs)
	session.UpdatedAt = fromMillis(updatedMs)
	return session, nil
}

// PutSession overwrites the state of an existing session.
func (s *Store) PutSession(ctx context.Context, session storage.Session) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return putSession(ctx, s.sqlDB, session, s.now())
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putSession(ctx context.Context, db execer, session storage.Session, now time.Time) error {
	id := strings.TrimSpace(session.ID)
	if id == "" {
		return fmt.Errorf("session id is required")
	}
	updated := session.UpdatedAt
	if updated.IsZero() {
		updated = now
	}
	res, err := db.ExecContext(ctx,
		`UPDATE sessions
		    SET current_operand = ?, previous_expression = ?, pending_operator = ?, awaiting_next = ?, updated_at = ?
		  WHERE id = ?`,
		session.State.Current,
		session.State.Previous,
		string(session.State.Operator),
		session.State.AwaitingNext,
		toMillis(updated),
		id,
	)
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteSession removes a session and, through the foreign key, its tape.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("session id is required")
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// AppendTapeEntry inserts one tape entry and returns it with its sequence.
func (s *Store) AppendTapeEntry(ctx context.Context, entry storage.TapeEntry) (storage.TapeEntry, error) {
	if err := s.ready(ctx); err != nil {
		return storage.TapeEntry{}, err
	}
	return appendTapeEntry(ctx, s.sqlDB, entry, s.now())
}

func appendTapeEntry(ctx context.Context, db execer, entry storage.TapeEntry, now time.Time) (storage.TapeEntry, error) {
	entry.SessionID = strings.TrimSpace(entry.SessionID)
	if entry.SessionID == "" {
		return storage.TapeEntry{}, fmt.Errorf("session id is required")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.CreatedAt = fromMillis(toMillis(entry.CreatedAt))
	res, err := db.ExecContext(ctx,
		`INSERT INTO tape_entries (session_id, first_operand, operator, second_operand, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		entry.First,
		string(entry.Operator),
		entry.Second,
		entry.Result,
		toMillis(entry.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return storage.TapeEntry{}, storage.ErrNotFound
		}
		return storage.TapeEntry{}, fmt.Errorf("append tape entry: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return storage.TapeEntry{}, fmt.Errorf("append tape entry: %w", err)
	}
	entry.Seq = seq
	return entry, nil
}

// SavePress updates the session and appends its tape entries in one
// transaction.
func (s *Store) SavePress(ctx context.Context, session storage.Session, entries []storage.TapeEntry) ([]storage.TapeEntry, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin press: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now()
	if err := putSession(ctx, tx, session, now); err != nil {
		return nil, err
	}
	saved := make([]storage.TapeEntry, 0, len(entries))
	for _, entry := range entries {
		entry.SessionID = session.ID
		stored, err := appendTapeEntry(ctx, tx, entry, now)
		if err != nil {
			return nil, err
		}
		saved = append(saved, stored)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit press: %w", err)
	}
	return saved, nil
}

// ListTapeEntries returns one page of a session's tape, newest first. The
// page token is the opaque position of the last entry on the previous page.
func (s *Store) ListTapeEntries(ctx context.Context, sessionID string, pageSize int, pageToken string, cond filter.SQLCondition) (storage.TapePage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.TapePage{}, err
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return storage.TapePage{}, fmt.Errorf("session id is required")
	}
	if pageSize <= 0 {
		return storage.TapePage{}, fmt.Errorf("page size must be greater than zero")
	}
	before, err := pagination.DecodeCursor(pageToken)
	if err != nil {
		return storage.TapePage{}, err
	}

	query := strings.Builder{}
	query.WriteString(`SELECT seq, session_id, first_operand, operator, second_operand, result, created_at
	   FROM tape_entries
	  WHERE session_id = ?`)
	args := []any{sessionID}
	if before > 0 {
		query.WriteString(" AND seq < ?")
		args = append(args, before)
	}
	if !cond.Empty() {
		query.WriteString(" AND " + cond.Clause)
		args = append(args, cond.Params...)
	}
	query.WriteString(" ORDER BY seq DESC LIMIT ?")
	args = append(args, pageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return storage.TapePage{}, fmt.Errorf("list tape entries: %w", err)
	}
	defer rows.Close()

	page := storage.TapePage{Entries: make([]storage.TapeEntry, 0, pageSize)}
	for rows.Next() {
		var (
			entry     storage.TapeEntry
			operator  string
			createdAt int64
		)
		if err := rows.Scan(&entry.Seq, &entry.SessionID, &entry.First, &operator, &entry.Second, &entry.Result, &createdAt); err != nil {
			return storage.TapePage{}, fmt.Errorf("list tape entries: %w", err)
		}
		entry.Operator = calculator.Operator(operator)
		entry.CreatedAt = fromMillis(createdAt)
		page.Entries = append(page.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return storage.TapePage{}, fmt.Errorf("list tape entries: %w", err)
	}
	if len(page.Entries) > pageSize {
		page.NextPageToken = pagination.EncodeCursor(page.Entries[pageSize-1].Seq)
		page.Entries = page.Entries[:pageSize]
	}
	return page, nil
}

func sqliteCode(err error) (int, bool) {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code(), true
	}
	return 0, false
}

func isUniqueViolation(err error) bool {
	if code, ok := sqliteCode(err); ok {
		return code == sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func isForeignKeyViolation(err error) bool {
	if code, ok := sqliteCode(err); ok {
		return code == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}

var _ storage.Store = (*Store)(nil)
