// Package storage defines persistence contracts for calculator sessions and
// their tapes.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/calcdeck/internal/calculator"
	"github.com/louisbranch/calcdeck/internal/services/calc/filter"
)

var (
	// ErrNotFound indicates a requested session is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a session ID is already taken.
	ErrAlreadyExists = errors.New("record already exists")
)

// Session is the persisted snapshot of one calculator.
type Session struct {
	ID        string
	State     calculator.State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TapeEntry records one evaluation performed while pressing inputs.
type TapeEntry struct {
	SessionID string
	Seq       int64
	First     string
	Operator  calculator.Operator
	Second    string
	Result    string
	CreatedAt time.Time
}

// TapeEntryFromEvaluation builds an unsaved tape entry.
func TapeEntryFromEvaluation(sessionID string, evaluation calculator.Evaluation, at time.Time) TapeEntry {
	return TapeEntry{
		SessionID: sessionID,
		First:     evaluation.First,
		Operator:  evaluation.Operator,
		Second:    evaluation.Second,
		Result:    evaluation.Result,
		CreatedAt: at,
	}
}

// TapePage is one page of tape entries, newest first.
type TapePage struct {
	Entries       []TapeEntry
	NextPageToken string
}

// SessionStore persists session snapshots.
type SessionStore interface {
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	PutSession(ctx context.Context, session Session) error
	DeleteSession(ctx context.Context, id string) error
}

// TapeStore persists tape entries.
type TapeStore interface {
	AppendTapeEntry(ctx context.Context, entry TapeEntry) (TapeEntry, error)
	ListTapeEntries(ctx context.Context, sessionID string, pageSize int, pageToken string, cond filter.SQLCondition) (TapePage, error)
}

// PressStore saves the outcome of a press atomically: the new session
// snapshot together with the tape entries it produced. Saved entries are
// returned with their sequence numbers.
type PressStore interface {
	SavePress(ctx context.Context, session Session, entries []TapeEntry) ([]TapeEntry, error)
}

// Store is the full persistence surface used by the session service.
type Store interface {
	SessionStore
	TapeStore
	PressStore
}
