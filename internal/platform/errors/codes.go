// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Session errors
	CodeSessionIDRequired Code = "SESSION_ID_REQUIRED"
	CodeSessionNotFound   Code = "SESSION_NOT_FOUND"

	// Input errors
	CodeUnknownAction  Code = "UNKNOWN_ACTION"
	CodeEmptyActions   Code = "EMPTY_ACTIONS"
	CodeTooManyActions Code = "TOO_MANY_ACTIONS"

	// Tape listing errors
	CodeInvalidFilter    Code = "INVALID_FILTER"
	CodeInvalidPageToken Code = "INVALID_PAGE_TOKEN"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeSessionIDRequired,
		CodeUnknownAction,
		CodeEmptyActions,
		CodeTooManyActions,
		CodeInvalidFilter,
		CodeInvalidPageToken:
		return codes.InvalidArgument

	case CodeSessionNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
