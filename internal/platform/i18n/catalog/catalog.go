// Package catalog loads the embedded locale message files and registers them
// with golang.org/x/text/message.
//
// Files live at locales/<locale>/<namespace>.yaml with locale and namespace
// headers followed by a flat messages map.
package catalog

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// BaseLocale is the locale every other locale falls back to.
const BaseLocale = "en-US"

//go:embed locales/*/*.yaml
var embeddedFS embed.FS

var defaultBundle = mustLoadAndRegister()

// Bundle holds messages for every loaded locale, grouped by namespace.
type Bundle struct {
	locales map[string]map[string]map[string]string
}

// Default returns the process-wide embedded bundle. Its messages are already
// registered with the x/text message catalog.
func Default() *Bundle {
	return defaultBundle
}

// LoadEmbedded loads the catalog files compiled into the binary.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedFS)
}

// LoadFromFS loads catalog files from fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	bundle := &Bundle{locales: map[string]map[string]map[string]string{}}
	seen := map[string]map[string]string{}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		file, err := parseFile(data)
		if err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		wantLocale := path.Base(path.Dir(p))
		wantNamespace := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if file.Locale != wantLocale {
			return nil, fmt.Errorf("catalog %s: locale %q must match directory %q", p, file.Locale, wantLocale)
		}
		if file.Namespace != wantNamespace {
			return nil, fmt.Errorf("catalog %s: namespace %q must match file name %q", p, file.Namespace, wantNamespace)
		}

		namespaces, ok := bundle.locales[file.Locale]
		if !ok {
			namespaces = map[string]map[string]string{}
			bundle.locales[file.Locale] = namespaces
			seen[file.Locale] = map[string]string{}
		}
		for key := range file.Messages {
			if owner, dup := seen[file.Locale][key]; dup {
				return nil, fmt.Errorf("catalog %s: key %q already defined in namespace %q", p, key, owner)
			}
			seen[file.Locale][key] = file.Namespace
		}
		namespaces[file.Namespace] = file.Messages
	}

	if _, ok := bundle.locales[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	return bundle, nil
}

// Register publishes every message to the x/text catalog under its locale
// tag and under the bare language tag, so "pt" resolves like "pt-BR".
func (b *Bundle) Register() error {
	for _, locale := range b.Locales() {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		tags := []language.Tag{tag}
		if base, confidence := tag.Base(); confidence != language.No {
			if baseTag := language.Make(base.String()); baseTag != tag {
				tags = append(tags, baseTag)
			}
		}
		for key, value := range b.Messages(locale) {
			for _, t := range tags {
				if err := message.SetString(t, key, value); err != nil {
					return fmt.Errorf("register %s %q: %w", t, key, err)
				}
			}
		}
	}
	return nil
}

// Locales returns the sorted locale identifiers in the bundle.
func (b *Bundle) Locales() []string {
	if b == nil {
		return nil
	}
	out := make([]string, 0, len(b.locales))
	for locale := range b.locales {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// HasLocale reports whether locale was loaded.
func (b *Bundle) HasLocale(locale string) bool {
	if b == nil {
		return false
	}
	_, ok := b.locales[strings.TrimSpace(locale)]
	return ok
}

// Messages returns a copy of every message for locale across namespaces.
func (b *Bundle) Messages(locale string) map[string]string {
	out := map[string]string{}
	if b == nil {
		return out
	}
	for _, messages := range b.locales[strings.TrimSpace(locale)] {
		for key, value := range messages {
			out[key] = value
		}
	}
	return out
}

// NamespaceMessages returns a copy of one namespace for locale.
func (b *Bundle) NamespaceMessages(locale, namespace string) map[string]string {
	out := map[string]string{}
	if b == nil {
		return out
	}
	for key, value := range b.locales[strings.TrimSpace(locale)][strings.TrimSpace(namespace)] {
		out[key] = value
	}
	return out
}

// NamespaceMessagesWithFallback returns the namespace for locale, or the base
// locale's namespace when locale has none, along with the locale used.
func (b *Bundle) NamespaceMessagesWithFallback(locale, namespace string) (string, map[string]string) {
	locale = strings.TrimSpace(locale)
	if messages := b.NamespaceMessages(locale, namespace); len(messages) > 0 {
		return locale, messages
	}
	return BaseLocale, b.NamespaceMessages(BaseLocale, namespace)
}

func mustLoadAndRegister() *Bundle {
	bundle, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	if err := bundle.Register(); err != nil {
		panic(err)
	}
	return bundle
}

type file struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

func parseFile(data []byte) (file, error) {
	var out file
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&out); err != nil {
		return file{}, err
	}
	switch {
	case strings.TrimSpace(out.Locale) == "":
		return file{}, fmt.Errorf("missing locale")
	case strings.TrimSpace(out.Namespace) == "":
		return file{}, fmt.Errorf("missing namespace")
	case len(out.Messages) == 0:
		return file{}, fmt.Errorf("missing messages")
	}
	for key := range out.Messages {
		if strings.TrimSpace(key) == "" {
			return file{}, fmt.Errorf("blank message key")
		}
	}
	return out, nil
}
