// Package htmx renders templ components for htmx and full-page requests.
package htmx

import (
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

const (
	// RequestHeaderKey is the header htmx sets on every request it issues.
	RequestHeaderKey = "HX-Request"
	// TriggerHeaderKey names client events to fire after a swap.
	TriggerHeaderKey = "HX-Trigger"
)

// IsHTMXRequest reports whether the request was initiated by htmx.
func IsHTMXRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return strings.EqualFold(r.Header.Get(RequestHeaderKey), "true")
}

// TitleTag formats an escaped <title> element.
func TitleTag(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	return "<title>" + html.EscapeString(title) + "</title>"
}

// Trigger asks htmx to dispatch event on the client after the swap.
func Trigger(w http.ResponseWriter, event string) {
	event = strings.TrimSpace(event)
	if w == nil || event == "" {
		return
	}
	w.Header().Add(TriggerHeaderKey, event)
}

// RenderPage writes fragment for htmx requests and full otherwise, with
// status as the response code. The htmx response is prefixed with a title
// tag so htmx updates the document title. A nil fragment falls back to full.
func RenderPage(w http.ResponseWriter, r *http.Request, status int, fragment, full templ.Component, title string) error {
	if w == nil {
		return nil
	}
	if status == 0 {
		status = http.StatusOK
	}
	target := full
	if IsHTMXRequest(r) && fragment != nil {
		target = fragment
	}
	if target == nil {
		target = fragment
	}
	if target == nil {
		w.WriteHeader(status)
		return nil
	}
	ctx := r.Context()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if IsHTMXRequest(r) {
		if tag := TitleTag(title); tag != "" {
			if _, err := io.WriteString(w, tag); err != nil {
				return err
			}
		}
	}
	return target.Render(ctx, w)
}
