package web

import (
	"net/url"

	calcapi "github.com/louisbranch/calcdeck/internal/services/calc/api/grpc/calculator"
	"github.com/louisbranch/calcdeck/internal/services/shared/i18nhttp"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// keypadLayout lists the keypad in row order, four keys per row. Title holds
// the message key for the accessible label.
var keypadLayout = []keyView{
	{Label: "C", Action: "clear", Title: "web.key.clear", Class: "fn"},
	{Label: "⌫", Action: "delete", Title: "web.key.delete", Class: "fn"},
	{Label: "%", Action: "percent", Title: "web.key.percent", Class: "fn"},
	{Label: "÷", Action: "operator:/", Title: "web.key.divide", Class: "op"},
	{Label: "7", Action: "digit:7"},
	{Label: "8", Action: "digit:8"},
	{Label: "9", Action: "digit:9"},
	{Label: "×", Action: "operator:*", Title: "web.key.multiply", Class: "op"},
	{Label: "4", Action: "digit:4"},
	{Label: "5", Action: "digit:5"},
	{Label: "6", Action: "digit:6"},
	{Label: "−", Action: "operator:-", Title: "web.key.subtract", Class: "op"},
	{Label: "1", Action: "digit:1"},
	{Label: "2", Action: "digit:2"},
	{Label: "3", Action: "digit:3"},
	{Label: "+", Action: "operator:+", Title: "web.key.add", Class: "op"},
	{Label: "±", Action: "sign", Title: "web.key.sign", Class: "fn"},
	{Label: "0", Action: "digit:0"},
	{Label: ".", Action: "decimal", Title: "web.key.decimal"},
	{Label: "=", Action: "equals", Title: "web.key.equals", Class: "op"},
}

// copyFor renders page text in one language.
type copyFor struct {
	tag     language.Tag
	printer *message.Printer
}

func newCopy(tag language.Tag) copyFor {
	return copyFor{tag: tag, printer: i18nhttp.Printer(tag)}
}

func (c copyFor) t(key string) string {
	return c.printer.Sprintf(key)
}

func (c copyFor) keys() []keyView {
	keys := make([]keyView, 0, len(keypadLayout))
	for _, key := range keypadLayout {
		if key.Title != "" {
			key.Title = c.t(key.Title)
		}
		keys = append(keys, key)
	}
	return keys
}

func (c copyFor) display(state calcapi.State, notice string) displayView {
	return displayView{
		Previous:      state.Previous,
		Current:       state.Current,
		PreviousLabel: c.t("web.display.previous"),
		CurrentLabel:  c.t("web.display.current"),
		Notice:        notice,
	}
}

func (c copyFor) tape(resp *calcapi.ListTapeResponse, filter, notice string) tapeView {
	view := tapeView{
		Title:       c.t("web.tape.title"),
		Empty:       c.t("web.tape.empty"),
		FilterLabel: c.t("web.tape.filter"),
		ApplyLabel:  c.t("web.tape.apply"),
		MoreLabel:   c.t("web.tape.more"),
		Filter:      filter,
		Notice:      notice,
	}
	if resp == nil {
		return view
	}
	for _, entry := range resp.Entries {
		view.Lines = append(view.Lines, tapeLine{
			Expression: entry.First + " " + entry.Operator + " " + entry.Second,
			Result:     entry.Result,
		})
	}
	if resp.NextPageToken != "" {
		query := url.Values{"page_token": {resp.NextPageToken}}
		if filter != "" {
			query.Set("filter", filter)
		}
		view.NextURL = "/tape?" + query.Encode()
	}
	return view
}

func (c copyFor) page(path string, display displayView, tape tapeView) pageView {
	return pageView{
		Lang:          c.tag.String(),
		Title:         c.t("web.title"),
		Display:       display,
		KeypadLabel:   c.t("web.title"),
		Keys:          c.keys(),
		Tape:          tape,
		LanguageLabel: c.t("web.language"),
		Languages: i18nhttp.Languages(path, c.tag, func(tag language.Tag) string {
			return c.t(i18nhttp.LanguageKey(tag))
		}),
	}
}
