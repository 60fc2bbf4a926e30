package web

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/louisbranch/calcdeck/internal/platform/timeouts"
	calcapi "github.com/louisbranch/calcdeck/internal/services/calc/api/grpc/calculator"
	"github.com/louisbranch/calcdeck/internal/services/shared/htmx"
	"github.com/louisbranch/calcdeck/internal/services/shared/i18nhttp"
	"github.com/louisbranch/calcdeck/internal/services/web/platform/httpx"
	"github.com/louisbranch/calcdeck/internal/services/web/platform/sessioncookie"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	tapePageSize = 10
	// tapeChangedEvent tells the tape panel to reload after a press that
	// produced evaluations.
	tapeChangedEvent = "tape-changed"
)

// CalculatorClient is the calc gRPC surface the web service uses.
type CalculatorClient interface {
	CreateSession(ctx context.Context, in *calcapi.CreateSessionRequest, opts ...grpc.CallOption) (*calcapi.CreateSessionResponse, error)
	GetSession(ctx context.Context, in *calcapi.GetSessionRequest, opts ...grpc.CallOption) (*calcapi.GetSessionResponse, error)
	Press(ctx context.Context, in *calcapi.PressRequest, opts ...grpc.CallOption) (*calcapi.PressResponse, error)
	PressKey(ctx context.Context, in *calcapi.PressKeyRequest, opts ...grpc.CallOption) (*calcapi.PressResponse, error)
	ListTape(ctx context.Context, in *calcapi.ListTapeRequest, opts ...grpc.CallOption) (*calcapi.ListTapeResponse, error)
}

type handlers struct {
	calc CalculatorClient
}

// pressCall applies one form value to a session.
type pressCall func(ctx context.Context, sessionID, value string) (*calcapi.PressResponse, error)

func (h handlers) home(w http.ResponseWriter, r *http.Request) {
	tr := h.language(r)
	ctx, cancel := h.callContext(r, tr)
	defer cancel()

	session, err := h.ensureSession(ctx, w, r)
	if err != nil {
		h.renderUnavailable(w, r, tr, err)
		return
	}
	tape, err := h.calc.ListTape(ctx, &calcapi.ListTapeRequest{SessionID: session.ID, PageSize: tapePageSize})
	if err != nil {
		log.Printf("web: list tape for %s: %v", session.ID, err)
		tape = nil
	}
	page := tr.page(r.URL.Path, tr.display(session.State, ""), tr.tape(tape, "", ""))
	h.render(w, r, http.StatusOK, nil, page)
}

func (h handlers) press(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, "action", func(ctx context.Context, sessionID, value string) (*calcapi.PressResponse, error) {
		return h.calc.Press(ctx, &calcapi.PressRequest{SessionID: sessionID, Actions: []string{value}})
	})
}

func (h handlers) key(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, "key", func(ctx context.Context, sessionID, value string) (*calcapi.PressResponse, error) {
		return h.calc.PressKey(ctx, &calcapi.PressKeyRequest{SessionID: sessionID, Keys: []string{value}})
	})
}

// apply reads field from the posted form and applies it to the request's
// session, creating the session when the cookie is missing or stale.
func (h handlers) apply(w http.ResponseWriter, r *http.Request, field string, call pressCall) {
	tr := h.language(r)
	if err := r.ParseForm(); err != nil {
		code := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			code = http.StatusRequestEntityTooLarge
		}
		http.Error(w, tr.t("web.error.bad_input"), code)
		return
	}
	value := strings.TrimSpace(r.PostForm.Get(field))

	ctx, cancel := h.callContext(r, tr)
	defer cancel()

	session, err := h.ensureSession(ctx, w, r)
	if err != nil {
		h.renderUnavailable(w, r, tr, err)
		return
	}
	resp, err := call(ctx, session.ID, value)
	if status.Code(err) == codes.NotFound {
		session, err = h.createSession(ctx, w, r)
		if err == nil {
			resp, err = call(ctx, session.ID, value)
		}
	}
	switch {
	case status.Code(err) == codes.InvalidArgument:
		h.renderDisplay(w, r, http.StatusBadRequest, tr, tr.display(session.State, tr.t("web.error.bad_input")))
		return
	case err != nil:
		h.renderUnavailable(w, r, tr, err)
		return
	}

	if !htmx.IsHTMXRequest(r) {
		httpx.WriteRedirect(w, r, "/")
		return
	}
	if len(resp.Tape) > 0 {
		htmx.Trigger(w, tapeChangedEvent)
	}
	h.renderDisplay(w, r, http.StatusOK, tr, tr.display(resp.State, ""))
}

func (h handlers) tape(w http.ResponseWriter, r *http.Request) {
	tr := h.language(r)
	ctx, cancel := h.callContext(r, tr)
	defer cancel()

	query := r.URL.Query()
	filter := strings.TrimSpace(query.Get("filter"))
	session, err := h.ensureSession(ctx, w, r)
	if err != nil {
		h.renderUnavailable(w, r, tr, err)
		return
	}

	code := http.StatusOK
	var tape tapeView
	resp, err := h.calc.ListTape(ctx, &calcapi.ListTapeRequest{
		SessionID: session.ID,
		PageSize:  tapePageSize,
		PageToken: strings.TrimSpace(query.Get("page_token")),
		Filter:    filter,
	})
	switch {
	case status.Code(err) == codes.InvalidArgument:
		code = http.StatusBadRequest
		tape = tr.tape(nil, filter, tr.t("web.error.bad_input"))
	case err != nil:
		h.renderUnavailable(w, r, tr, err)
		return
	default:
		tape = tr.tape(resp, filter, "")
	}

	page := tr.page("/", tr.display(session.State, ""), tape)
	h.render(w, r, code, tapeComponent(tape), page)
}

func (h handlers) language(r *http.Request) copyFor {
	return newCopy(i18nhttp.TagFromContext(r.Context()))
}

func (h handlers) callContext(r *http.Request, tr copyFor) (context.Context, context.CancelFunc) {
	ctx := calcapi.WithLocale(r.Context(), tr.tag.String())
	return context.WithTimeout(ctx, timeouts.GRPCRequest)
}

func (h handlers) ensureSession(ctx context.Context, w http.ResponseWriter, r *http.Request) (calcapi.Session, error) {
	if sessionID, ok := sessioncookie.Read(r); ok {
		resp, err := h.calc.GetSession(ctx, &calcapi.GetSessionRequest{SessionID: sessionID})
		if err == nil {
			return resp.Session, nil
		}
		if code := status.Code(err); code != codes.NotFound && code != codes.InvalidArgument {
			return calcapi.Session{}, err
		}
	}
	return h.createSession(ctx, w, r)
}

func (h handlers) createSession(ctx context.Context, w http.ResponseWriter, r *http.Request) (calcapi.Session, error) {
	resp, err := h.calc.CreateSession(ctx, &calcapi.CreateSessionRequest{})
	if err != nil {
		return calcapi.Session{}, err
	}
	sessioncookie.Write(w, r, resp.Session.ID)
	return resp.Session, nil
}

func (h handlers) renderDisplay(w http.ResponseWriter, r *http.Request, code int, tr copyFor, display displayView) {
	page := tr.page("/", display, tr.tape(nil, "", ""))
	h.render(w, r, code, displayComponent(display), page)
}

func (h handlers) renderUnavailable(w http.ResponseWriter, r *http.Request, tr copyFor, err error) {
	log.Printf("web: calculator call failed path=%s: %v", r.URL.Path, err)
	display := tr.display(calcapi.State{Current: "0"}, tr.t("web.error.unavailable"))
	h.renderDisplay(w, r, http.StatusServiceUnavailable, tr, display)
}

func (h handlers) render(w http.ResponseWriter, r *http.Request, code int, fragment templ.Component, page pageView) {
	if err := htmx.RenderPage(w, r, code, fragment, pageComponent(page), page.Title); err != nil {
		log.Printf("web: render %s: %v", r.URL.Path, err)
	}
}
