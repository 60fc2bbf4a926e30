package htmx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func textComponent(body string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, body)
		return err
	})
}

func TestIsHTMXRequest(t *testing.T) {
	t.Run("missing_request_is_not_htmx", func(t *testing.T) {
		t.Parallel()
		if got := IsHTMXRequest(nil); got {
			t.Fatalf("IsHTMXRequest(nil) = true, want false")
		}
	})

	t.Run("true_request_is_htmx", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(RequestHeaderKey, "true")
		if got := IsHTMXRequest(r); !got {
			t.Fatalf("IsHTMXRequest(request) = false, want true")
		}
	})
}

func TestTitleTag(t *testing.T) {
	t.Parallel()
	if got := TitleTag("  "); got != "" {
		t.Fatalf("TitleTag(blank) = %q, want empty", got)
	}
	if got := TitleTag("5 < 6"); got != "<title>5 &lt; 6</title>" {
		t.Fatalf("TitleTag = %q", got)
	}
}

func TestRenderPage(t *testing.T) {
	t.Run("full_page_for_plain_request", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()
		if err := RenderPage(rr, r, 0, textComponent("<div>fragment</div>"), textComponent("<html>full</html>"), "Calc"); err != nil {
			t.Fatalf("render: %v", err)
		}
		if rr.Code != http.StatusOK || rr.Body.String() != "<html>full</html>" {
			t.Fatalf("response = %d %q", rr.Code, rr.Body.String())
		}
	})

	t.Run("fragment_with_title_for_htmx", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodPost, "/press", nil)
		r.Header.Set(RequestHeaderKey, "true")
		rr := httptest.NewRecorder()
		if err := RenderPage(rr, r, http.StatusBadRequest, textComponent("<div>fragment</div>"), textComponent("<html>full</html>"), "Calc"); err != nil {
			t.Fatalf("render: %v", err)
		}
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
		}
		if got := rr.Body.String(); got != "<title>Calc</title><div>fragment</div>" {
			t.Fatalf("body = %q", got)
		}
		if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Fatalf("content type = %q", ct)
		}
	})

	t.Run("htmx_without_fragment_uses_full", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(RequestHeaderKey, "true")
		rr := httptest.NewRecorder()
		if err := RenderPage(rr, r, 0, nil, textComponent("<main>full</main>"), ""); err != nil {
			t.Fatalf("render: %v", err)
		}
		if got := rr.Body.String(); got != "<main>full</main>" {
			t.Fatalf("body = %q", got)
		}
	})
}

func TestTrigger(t *testing.T) {
	t.Parallel()
	rr := httptest.NewRecorder()
	Trigger(rr, "tape-changed")
	Trigger(rr, " ")
	if got := rr.Header().Values(TriggerHeaderKey); len(got) != 1 || got[0] != "tape-changed" {
		t.Fatalf("trigger headers = %v", got)
	}
}
