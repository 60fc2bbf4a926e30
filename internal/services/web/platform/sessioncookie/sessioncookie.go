// Package sessioncookie keeps the calculator session id in a browser cookie.
package sessioncookie

import (
	"net/http"
	"strings"
	"time"
)

// Name is the calculator session cookie name.
const Name = "calcdeck_session"

// Lifetime is how long a browser keeps its calculator between visits.
const Lifetime = 30 * 24 * time.Hour

// Read returns the session id carried by r, if any.
func Read(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(Name)
	if err != nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	return value, value != ""
}

// Write stores sessionID for Lifetime. The cookie is marked Secure when r
// arrived over TLS or an https proxy.
func Write(w http.ResponseWriter, r *http.Request, sessionID string) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    strings.TrimSpace(sessionID),
		Path:     "/",
		MaxAge:   int(Lifetime / time.Second),
		HttpOnly: true,
		Secure:   overHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func overHTTPS(r *http.Request) bool {
	switch {
	case r == nil:
		return false
	case r.TLS != nil:
		return true
	default:
		return strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https")
	}
}
