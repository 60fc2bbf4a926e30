package errors

import (
	stderrors "errors"

	"github.com/louisbranch/calcdeck/internal/platform/errors/i18n"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

// Domain is the ErrorInfo domain of calcdeck errors.
const Domain = "calcdeck"

// Error is a coded failure that callers can show in their own language.
type Error struct {
	Code Code
	// Message is the English text for logs.
	Message string
	// Metadata fills the localized message template.
	Metadata map[string]string
	Cause    error
}

// New returns an Error for code. meta holds template key/value pairs; a
// trailing key without a value is dropped.
func New(code Code, message string, cause error, meta ...string) *Error {
	e := &Error{Code: code, Message: message, Cause: cause}
	if len(meta) >= 2 {
		e.Metadata = make(map[string]string, len(meta)/2)
		for i := 0; i+1 < len(meta); i += 2 {
			e.Metadata[meta[i]] = meta[i+1]
		}
	}
	return e
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

// CodeOf returns the code of the first Error in err's chain, or CodeUnknown.
func CodeOf(err error) Code {
	var coded *Error
	if stderrors.As(err, &coded) {
		return coded.Code
	}
	return CodeUnknown
}

// LocalizedMessage renders the message for locale, falling back to en-US.
func (e *Error) LocalizedMessage(locale string) string {
	return i18n.GetCatalog(locale).Format(string(e.Code), e.Metadata)
}

// Status converts e to a gRPC status whose message is localized for locale.
// The ErrorInfo detail carries the code and metadata and the
// LocalizedMessage detail names the locale actually used.
func (e *Error) Status(locale string) error {
	catalog := i18n.GetCatalog(locale)
	message := catalog.Format(string(e.Code), e.Metadata)
	st := status.New(e.Code.GRPCCode(), message)
	detailed, err := st.WithDetails(
		&errdetails.ErrorInfo{Reason: string(e.Code), Domain: Domain, Metadata: e.Metadata},
		&errdetails.LocalizedMessage{Locale: catalog.Locale(), Message: message},
	)
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}
