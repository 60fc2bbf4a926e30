// Package i18nhttp negotiates the language of browser requests.
package i18nhttp

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	platformi18n "github.com/louisbranch/calcdeck/internal/platform/i18n"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// LangParam is the query parameter that switches language.
	LangParam = "lang"
	// LangCookieName remembers a language chosen through LangParam.
	LangCookieName = "calcdeck_lang"

	langCookieLifetime = 365 * 24 * time.Hour
)

// Source names where a request's language came from.
type Source int

const (
	SourceDefault Source = iota
	SourceAcceptLanguage
	SourceCookie
	SourceQuery
)

type tagKey struct{}

// LanguageOption is one entry of a language picker.
type LanguageOption struct {
	Tag    string
	Label  string
	URL    string
	Active bool
}

// Printer returns a message printer for tag backed by the embedded catalog.
func Printer(tag language.Tag) *message.Printer {
	platformi18n.SupportedTags()
	return message.NewPrinter(tag)
}

// Resolve picks the request language from the lang query parameter, the
// language cookie, then Accept-Language.
func Resolve(r *http.Request) (language.Tag, Source) {
	if r == nil {
		return platformi18n.DefaultTag(), SourceDefault
	}
	if tag, ok := platformi18n.ParseTag(r.URL.Query().Get(LangParam)); ok {
		return tag, SourceQuery
	}
	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if tag, ok := platformi18n.ParseTag(cookie.Value); ok {
			return tag, SourceCookie
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
			return platformi18n.MatchTags(tags), SourceAcceptLanguage
		}
	}
	return platformi18n.DefaultTag(), SourceDefault
}

// Middleware resolves the language for each request, stores it on the
// request context, and remembers a query-selected language in a cookie.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tag, source := Resolve(r)
			if source == SourceQuery {
				http.SetCookie(w, &http.Cookie{
					Name:     LangCookieName,
					Value:    tag.String(),
					Path:     "/",
					MaxAge:   int(langCookieLifetime / time.Second),
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(WithTag(r.Context(), tag)))
		})
	}
}

// WithTag returns ctx carrying tag.
func WithTag(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, tagKey{}, tag)
}

// TagFromContext returns the negotiated language, or the default one.
func TagFromContext(ctx context.Context) language.Tag {
	if ctx != nil {
		if tag, ok := ctx.Value(tagKey{}).(language.Tag); ok {
			return tag
		}
	}
	return platformi18n.DefaultTag()
}

// Languages lists the supported languages as links back to path, marking
// active. label names each language; an empty label falls back to the tag.
func Languages(path string, active language.Tag, label func(language.Tag) string) []LanguageOption {
	supported := platformi18n.SupportedTags()
	options := make([]LanguageOption, 0, len(supported))
	for _, tag := range supported {
		name := ""
		if label != nil {
			name = strings.TrimSpace(label(tag))
		}
		if name == "" {
			name = tag.String()
		}
		options = append(options, LanguageOption{
			Tag:    tag.String(),
			Label:  name,
			URL:    LanguageURL(path, "", tag),
			Active: tag == active,
		})
	}
	return options
}

// LanguageURL returns path with rawQuery and the lang parameter set to tag.
func LanguageURL(path, rawQuery string, tag language.Tag) string {
	if path = strings.TrimSpace(path); path == "" {
		path = "/"
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		query = url.Values{}
	}
	query.Set(LangParam, tag.String())
	return (&url.URL{Path: path, RawQuery: query.Encode()}).String()
}

// LanguageKey is the message key naming tag in a language picker.
func LanguageKey(tag language.Tag) string {
	return "web.language." + tag.String()
}
