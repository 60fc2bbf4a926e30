// Package calculator exposes calculator sessions over gRPC.
package calculator

import (
	"context"
	"errors"
	"strconv"
	"strings"

	core "github.com/louisbranch/calcdeck/internal/calculator"
	apperrors "github.com/louisbranch/calcdeck/internal/platform/errors"
	"github.com/louisbranch/calcdeck/internal/platform/grpc/pagination"
	platformi18n "github.com/louisbranch/calcdeck/internal/platform/i18n"
	"github.com/louisbranch/calcdeck/internal/services/calc/session"
	"golang.org/x/text/language"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	defaultTapePageSize = 20
	maxTapePageSize     = 100
)

// LocaleHeader is the metadata key clients use to request localized error
// messages. Accept-Language is honored when it is absent.
const LocaleHeader = "x-calcdeck-locale"

// Service implements CalculatorServiceServer on top of session.Service.
type Service struct {
	sessions *session.Service
}

// NewService creates a calculator gRPC service.
func NewService(sessions *session.Service) *Service {
	return &Service{sessions: sessions}
}

// CreateSession starts a new session at the initial state.
func (s *Service) CreateSession(ctx context.Context, _ *CreateSessionRequest) (*CreateSessionResponse, error) {
	if s == nil || s.sessions == nil {
		return nil, status.Error(codes.Internal, "session service is not configured")
	}
	created, err := s.sessions.Create(ctx)
	if err != nil {
		return nil, toStatus(ctx, "", err)
	}
	return &CreateSessionResponse{Session: sessionFromStorage(created)}, nil
}

// GetSession returns a session with its current state.
func (s *Service) GetSession(ctx context.Context, in *GetSessionRequest) (*GetSessionResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "get session request is required")
	}
	if s == nil || s.sessions == nil {
		return nil, status.Error(codes.Internal, "session service is not configured")
	}
	found, err := s.sessions.Get(ctx, in.SessionID)
	if err != nil {
		return nil, toStatus(ctx, in.SessionID, err)
	}
	return &GetSessionResponse{Session: sessionFromStorage(found)}, nil
}

// DeleteSession removes a session and its tape.
func (s *Service) DeleteSession(ctx context.Context, in *DeleteSessionRequest) (*DeleteSessionResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "delete session request is required")
	}
	if s == nil || s.sessions == nil {
		return nil, status.Error(codes.Internal, "session service is not configured")
	}
	if err := s.sessions.Delete(ctx, in.SessionID); err != nil {
		return nil, toStatus(ctx, in.SessionID, err)
	}
	return &DeleteSessionResponse{}, nil
}

// Press applies canonical action names in order. Any unknown name rejects
// the whole request before state changes.
func (s *Service) Press(ctx context.Context, in *PressRequest) (*PressResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "press request is required")
	}
	if s == nil || s.sessions == nil {
		return nil, status.Error(codes.Internal, "session service is not configured")
	}
	actions := make([]core.Action, 0, len(in.Actions))
	for _, name := range in.Actions {
		action, err := core.ParseAction(name)
		if err != nil {
			return nil, localized(ctx, apperrors.New(apperrors.CodeUnknownAction, "unknown action", err, "Input", name))
		}
		actions = append(actions, action)
	}
	result, err := s.sessions.Press(ctx, in.SessionID, actions...)
	if err != nil {
		return nil, toStatus(ctx, in.SessionID, err)
	}
	return pressResponse(result, nil), nil
}

// PressKey applies keyboard key names in order. Keys without a mapping are
// ignored and echoed back; a request of only ignored keys leaves the session
// untouched.
func (s *Service) PressKey(ctx context.Context, in *PressKeyRequest) (*PressResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "press key request is required")
	}
	if s == nil || s.sessions == nil {
		return nil, status.Error(codes.Internal, "session service is not configured")
	}
	actions := make([]core.Action, 0, len(in.Keys))
	var ignored []string
	for _, key := range in.Keys {
		action, ok := core.ActionForKey(key)
		if !ok {
			ignored = append(ignored, key)
			continue
		}
		actions = append(actions, action)
	}
	if len(actions) == 0 {
		if len(in.Keys) == 0 {
			return nil, toStatus(ctx, in.SessionID, session.ErrNoActions)
		}
		found, err := s.sessions.Get(ctx, in.SessionID)
		if err != nil {
			return nil, toStatus(ctx, in.SessionID, err)
		}
		return &PressResponse{State: StateFromCore(found.State), Ignored: ignored}, nil
	}
	result, err := s.sessions.Press(ctx, in.SessionID, actions...)
	if err != nil {
		return nil, toStatus(ctx, in.SessionID, err)
	}
	return pressResponse(result, ignored), nil
}

// Evaluate computes one binary operation without touching any session.
func (s *Service) Evaluate(ctx context.Context, in *EvaluateRequest) (*EvaluateResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "evaluate request is required")
	}
	op, err := core.ParseOperator(in.Operator)
	if err != nil {
		return nil, localized(ctx, apperrors.New(apperrors.CodeUnknownAction, "unknown operator", err, "Input", in.Operator))
	}
	return &EvaluateResponse{Result: core.Evaluate(in.First, in.Second, op)}, nil
}

// ListTape pages through a session's evaluations, newest first.
func (s *Service) ListTape(ctx context.Context, in *ListTapeRequest) (*ListTapeResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "list tape request is required")
	}
	if s == nil || s.sessions == nil {
		return nil, status.Error(codes.Internal, "session service is not configured")
	}
	pageSize := pagination.ClampPageSize(in.PageSize, pagination.PageSizeConfig{
		Default: defaultTapePageSize,
		Max:     maxTapePageSize,
	})
	page, err := s.sessions.Tape(ctx, in.SessionID, pageSize, in.PageToken, in.Filter)
	if err != nil {
		return nil, toStatus(ctx, in.SessionID, err)
	}
	entries := tapeFromStorage(page.Entries)
	if entries == nil {
		entries = []TapeEntry{}
	}
	return &ListTapeResponse{Entries: entries, NextPageToken: page.NextPageToken}, nil
}

func pressResponse(result session.PressResult, ignored []string) *PressResponse {
	return &PressResponse{
		State:   StateFromCore(result.State),
		Steps:   stepsFromCore(result.Steps),
		Tape:    tapeFromStorage(result.Tape),
		Ignored: ignored,
	}
}

// toStatus maps session errors to localized gRPC statuses.
func toStatus(ctx context.Context, sessionID string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, session.ErrInvalidSession):
		return localized(ctx, apperrors.New(apperrors.CodeSessionIDRequired, "session id is required", err))
	case errors.Is(err, session.ErrNotFound):
		return localized(ctx, apperrors.New(apperrors.CodeSessionNotFound, "session not found", err, "SessionID", sessionID))
	case errors.Is(err, session.ErrNoActions):
		return localized(ctx, apperrors.New(apperrors.CodeEmptyActions, "no actions", err))
	case errors.Is(err, session.ErrTooManyActions):
		return localized(ctx, apperrors.New(apperrors.CodeTooManyActions, "too many actions", err, "Max", strconv.Itoa(session.MaxActionsPerPress)))
	case errors.Is(err, session.ErrInvalidFilter):
		return localized(ctx, apperrors.New(apperrors.CodeInvalidFilter, err.Error(), err))
	case errors.Is(err, session.ErrInvalidPageToken):
		return localized(ctx, apperrors.New(apperrors.CodeInvalidPageToken, "invalid page token", err))
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Errorf(codes.Internal, "calculator: %v", err)
	}
}

func localized(ctx context.Context, err *apperrors.Error) error {
	return err.Status(requestLocale(ctx))
}

// requestLocale picks the error message locale from incoming metadata.
func requestLocale(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return platformi18n.DefaultTag().String()
	}
	if values := md.Get(LocaleHeader); len(values) > 0 {
		if tag, ok := platformi18n.ParseTag(values[0]); ok {
			return tag.String()
		}
	}
	if values := md.Get("accept-language"); len(values) > 0 {
		tags, _, err := language.ParseAcceptLanguage(strings.Join(values, ","))
		if err == nil && len(tags) > 0 {
			return platformi18n.MatchTags(tags).String()
		}
	}
	return platformi18n.DefaultTag().String()
}
