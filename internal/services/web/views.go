package web

import (
	"net/url"

	"github.com/louisbranch/calcdeck/internal/services/shared/i18nhttp"
)

const htmxScriptURL = "https://unpkg.com/htmx.org@2.0.4"

type pageView struct {
	Lang          string
	Title         string
	Display       displayView
	KeypadLabel   string
	Keys          []keyView
	Tape          tapeView
	LanguageLabel string
	Languages     []i18nhttp.LanguageOption
}

type displayView struct {
	Previous      string
	Current       string
	PreviousLabel string
	CurrentLabel  string
	Notice        string
}

type keyView struct {
	Label  string
	Action string
	Title  string
	Class  string
}

type tapeView struct {
	Title       string
	Empty       string
	FilterLabel string
	ApplyLabel  string
	MoreLabel   string
	Filter      string
	Lines       []tapeLine
	NextURL     string
	Notice      string
}

type tapeLine struct {
	Expression string
	Result     string
}

// tapeRefreshURL is the URL the tape reloads from, keeping the active filter.
func tapeRefreshURL(filter string) string {
	if filter == "" {
		return "/tape"
	}
	return "/tape?" + url.Values{"filter": {filter}}.Encode()
}
