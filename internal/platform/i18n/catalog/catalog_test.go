package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func TestLoadEmbeddedHasExpectedLocales(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	for _, locale := range []string{BaseLocale, "pt-BR"} {
		if !bundle.HasLocale(locale) {
			t.Fatalf("expected locale %s", locale)
		}
	}
	if got := len(bundle.NamespaceMessages("en-US", "errors")); got == 0 {
		t.Fatal("expected en-US errors namespace messages")
	}
}

func TestLocalesShareKeys(t *testing.T) {
	bundle := Default()
	base := bundle.Messages(BaseLocale)
	for _, locale := range bundle.Locales() {
		messages := bundle.Messages(locale)
		for key := range base {
			if _, ok := messages[key]; !ok {
				t.Fatalf("locale %s is missing key %q", locale, key)
			}
		}
	}
}

func TestDefaultRegistersWithMessagePrinter(t *testing.T) {
	Default()
	if got := message.NewPrinter(language.BrazilianPortuguese).Sprintf("web.title"); got != "Calculadora" {
		t.Fatalf("pt-BR title = %q, want %q", got, "Calculadora")
	}
	if got := message.NewPrinter(language.Portuguese).Sprintf("web.title"); got != "Calculadora" {
		t.Fatalf("pt title = %q, want %q", got, "Calculadora")
	}
	if got := message.NewPrinter(language.AmericanEnglish).Sprintf("web.title"); got != "Calculator" {
		t.Fatalf("en-US title = %q, want %q", got, "Calculator")
	}
}

func TestLoadFromFSRejectsMismatchedNamespace(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "locales/en-US/web.yaml"), `locale: "en-US"
namespace: "errors"
messages:
  "a.key": "a"
`)
	if _, err := LoadFromFS(os.DirFS(dir)); err == nil {
		t.Fatal("expected namespace mismatch error")
	}
}

func TestLoadFromFSRejectsDuplicateKeysAcrossNamespaces(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "locales/en-US/errors.yaml"), `locale: "en-US"
namespace: "errors"
messages:
  "a.key": "a"
`)
	mustWriteFile(t, filepath.Join(dir, "locales/en-US/web.yaml"), `locale: "en-US"
namespace: "web"
messages:
  "a.key": "b"
`)
	if _, err := LoadFromFS(os.DirFS(dir)); err == nil {
		t.Fatal("expected duplicate key error")
	}
}

func TestLoadFromFSRequiresBaseLocale(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "locales/pt-BR/web.yaml"), `locale: "pt-BR"
namespace: "web"
messages:
  "a.key": "a"
`)
	if _, err := LoadFromFS(os.DirFS(dir)); err == nil {
		t.Fatal("expected missing base locale error")
	}
}

func TestParseFileHandlesEscapes(t *testing.T) {
	got, err := parseFile([]byte("locale: \"en-US\"\nnamespace: \"web\"\n# comment\nmessages:\n  \"quote.key\": \"say \\\"hi\\\": now\"\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v := got.Messages["quote.key"]; v != `say "hi": now` {
		t.Fatalf("value = %q", v)
	}
}

func TestParseFileRejectsUnknownHeaders(t *testing.T) {
	if _, err := parseFile([]byte("locale: en-US\nnamespace: web\nversion: 2\nmessages:\n  a.key: a\n")); err == nil {
		t.Fatal("expected unknown header error")
	}
	if _, err := parseFile([]byte("locale: en-US\nnamespace: web\n")); err == nil {
		t.Fatal("expected missing messages error")
	}
}

func TestNamespaceMessagesWithFallback(t *testing.T) {
	resolved, messages := Default().NamespaceMessagesWithFallback("fr-FR", "errors")
	if resolved != BaseLocale {
		t.Fatalf("resolved locale = %q, want %s", resolved, BaseLocale)
	}
	if len(messages) == 0 {
		t.Fatal("expected fallback errors namespace messages")
	}
}

func mustWriteFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
