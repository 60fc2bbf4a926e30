// Package session runs calculator sessions: it loads a session's state,
// applies inputs one at a time, and persists the new state with the tape
// entries the inputs produced.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/calcdeck/internal/calculator"
	"github.com/louisbranch/calcdeck/internal/platform/grpc/pagination"
	"github.com/louisbranch/calcdeck/internal/platform/id"
	"github.com/louisbranch/calcdeck/internal/services/calc/filter"
	"github.com/louisbranch/calcdeck/internal/services/calc/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxActionsPerPress caps how many inputs one Press call may apply.
const MaxActionsPerPress = 256

const tracerName = "github.com/louisbranch/calcdeck/internal/services/calc/session"

var (
	// ErrInvalidSession indicates a blank session ID.
	ErrInvalidSession = errors.New("session id is required")
	// ErrNotFound indicates the session does not exist.
	ErrNotFound = storage.ErrNotFound
	// ErrNoActions indicates a press without any inputs.
	ErrNoActions = errors.New("at least one action is required")
	// ErrTooManyActions indicates a press above MaxActionsPerPress.
	ErrTooManyActions = fmt.Errorf("at most %d actions can be pressed at once", MaxActionsPerPress)
	// ErrInvalidFilter indicates a tape filter that does not parse.
	ErrInvalidFilter = errors.New("invalid tape filter")
	// ErrInvalidPageToken indicates a malformed tape page token.
	ErrInvalidPageToken = errors.New("invalid page token")
)

// PressResult is the outcome of one Press call.
type PressResult struct {
	State calculator.State
	Steps []calculator.Step
	Tape  []storage.TapeEntry
}

// Service coordinates calculator sessions over a store.
type Service struct {
	store  storage.Store
	newID  func() (string, error)
	now    func() time.Time
	tracer trace.Tracer
	locks  *keyedLocks
}

// Option customizes a Service.
type Option func(*Service)

// WithIDGenerator replaces the session ID generator.
func WithIDGenerator(fn func() (string, error)) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithClock replaces the clock used for timestamps.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithTracerProvider replaces the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewService builds a session service over store.
func NewService(store storage.Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	s := &Service{
		store:  store,
		newID:  id.NewID,
		now:    time.Now,
		tracer: otel.Tracer(tracerName),
		locks:  newKeyedLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create starts a new session in the initial state.
func (s *Service) Create(ctx context.Context) (storage.Session, error) {
	sessionID, err := s.newID()
	if err != nil {
		return storage.Session{}, fmt.Errorf("generate session id: %w", err)
	}
	now := s.now().UTC()
	session := storage.Session{
		ID:        sessionID,
		State:     calculator.NewState(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return storage.Session{}, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// Get returns the stored session.
func (s *Service) Get(ctx context.Context, sessionID string) (storage.Session, error) {
	sessionID, err := normalizeID(sessionID)
	if err != nil {
		return storage.Session{}, err
	}
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return storage.Session{}, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	return session, nil
}

// Press applies actions to the session in order and saves the result. Calls
// for the same session are serialized.
func (s *Service) Press(ctx context.Context, sessionID string, actions ...calculator.Action) (result PressResult, err error) {
	sessionID, err = normalizeID(sessionID)
	if err != nil {
		return PressResult{}, err
	}
	if len(actions) == 0 {
		return PressResult{}, ErrNoActions
	}
	if len(actions) > MaxActionsPerPress {
		return PressResult{}, ErrTooManyActions
	}

	ctx, span := s.tracer.Start(ctx, "session.Press", trace.WithAttributes(
		attribute.String("calcdeck.session_id", sessionID),
		attribute.Int("calcdeck.actions", len(actions)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(
				attribute.String("calcdeck.display.previous", result.State.Previous),
				attribute.String("calcdeck.display.current", result.State.Current),
				attribute.Int("calcdeck.evaluations", len(result.Tape)),
			)
		}
		span.End()
	}()

	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return PressResult{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	now := s.now().UTC()
	state, steps := calculator.Apply(session.State, actions...)
	var entries []storage.TapeEntry
	for _, step := range steps {
		if step.Evaluation != nil {
			entries = append(entries, storage.TapeEntryFromEvaluation(sessionID, *step.Evaluation, now))
		}
	}

	session.State = state
	session.UpdatedAt = now
	saved, err := s.store.SavePress(ctx, session, entries)
	if err != nil {
		return PressResult{}, fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return PressResult{State: state, Steps: steps, Tape: saved}, nil
}

// Delete removes the session and its tape.
func (s *Service) Delete(ctx context.Context, sessionID string) error {
	sessionID, err := normalizeID(sessionID)
	if err != nil {
		return err
	}
	unlock := s.locks.lock(sessionID)
	defer unlock()
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

// Tape lists the session's evaluations, newest first. filterExpr is an
// optional AIP-160 expression over operator, first, second, result, seq and
// ts.
func (s *Service) Tape(ctx context.Context, sessionID string, pageSize int, pageToken, filterExpr string) (storage.TapePage, error) {
	sessionID, err := normalizeID(sessionID)
	if err != nil {
		return storage.TapePage{}, err
	}
	cond, err := filter.ParseTapeFilter(filterExpr)
	if err != nil {
		return storage.TapePage{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	if _, err := pagination.DecodeCursor(pageToken); err != nil {
		return storage.TapePage{}, fmt.Errorf("%w: %v", ErrInvalidPageToken, err)
	}
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return storage.TapePage{}, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	page, err := s.store.ListTapeEntries(ctx, sessionID, pageSize, pageToken, cond)
	if err != nil {
		return storage.TapePage{}, fmt.Errorf("list tape %s: %w", sessionID, err)
	}
	return page, nil
}

func normalizeID(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", ErrInvalidSession
	}
	return sessionID, nil
}
