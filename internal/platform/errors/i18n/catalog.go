// Package i18n renders localized messages for error codes from the
// "errors" namespace of the locale catalog.
package i18n

import (
	"strings"
	"sync"
	"text/template"

	i18ncatalog "github.com/louisbranch/calcdeck/internal/platform/i18n/catalog"
)

const namespace = "errors"

// Catalog holds the error message templates of one locale.
type Catalog struct {
	locale    string
	messages  map[string]string
	templates sync.Map // code -> *template.Template
}

// byLocale caches one Catalog per resolved locale.
var byLocale sync.Map

// GetCatalog returns the catalog for locale. Unknown or blank locales get
// the en-US catalog.
func GetCatalog(locale string) *Catalog {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = i18ncatalog.BaseLocale
	}
	if cached, ok := byLocale.Load(locale); ok {
		return cached.(*Catalog)
	}
	resolved, messages := i18ncatalog.Default().NamespaceMessagesWithFallback(locale, namespace)
	cat, _ := byLocale.LoadOrStore(resolved, NewCatalog(resolved, messages))
	if resolved != locale {
		byLocale.Store(locale, cat)
	}
	return cat.(*Catalog)
}

// NewCatalog builds a catalog from code templates.
func NewCatalog(locale string, messages map[string]string) *Catalog {
	owned := make(map[string]string, len(messages))
	for code, text := range messages {
		owned[code] = text
	}
	return &Catalog{locale: locale, messages: owned}
}

// Locale is the locale whose messages the catalog holds.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format fills the template for code with metadata. An unknown code renders
// as itself and a template that fails renders as its raw text.
func (c *Catalog) Format(code string, metadata map[string]string) string {
	text, ok := c.messages[code]
	if !ok {
		return code
	}
	tmpl, err := c.template(code, text)
	if err != nil {
		return text
	}
	var out strings.Builder
	if metadata == nil {
		metadata = map[string]string{}
	}
	if err := tmpl.Execute(&out, metadata); err != nil {
		return text
	}
	return out.String()
}

func (c *Catalog) template(code, text string) (*template.Template, error) {
	if cached, ok := c.templates.Load(code); ok {
		return cached.(*template.Template), nil
	}
	tmpl, err := template.New(code).Parse(text)
	if err != nil {
		return nil, err
	}
	actual, _ := c.templates.LoadOrStore(code, tmpl)
	return actual.(*template.Template), nil
}
