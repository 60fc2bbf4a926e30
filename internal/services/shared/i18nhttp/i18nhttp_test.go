package i18nhttp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/text/language"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		target     string
		cookie     string
		accept     string
		wantTag    language.Tag
		wantSource Source
	}{
		{name: "query", target: "/?lang=pt-BR", cookie: "en-US", wantTag: language.BrazilianPortuguese, wantSource: SourceQuery},
		{name: "cookie beats header", target: "/", cookie: "pt-BR", accept: "en-US", wantTag: language.BrazilianPortuguese, wantSource: SourceCookie},
		{name: "unknown query falls through", target: "/?lang=xx", accept: "pt;q=0.9, de;q=0.5", wantTag: language.BrazilianPortuguese, wantSource: SourceAcceptLanguage},
		{name: "default", target: "/", wantTag: language.AmericanEnglish, wantSource: SourceDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: LangCookieName, Value: tt.cookie})
			}
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			tag, source := Resolve(req)
			if tag != tt.wantTag || source != tt.wantSource {
				t.Fatalf("Resolve = %v, %v, want %v, %v", tag, source, tt.wantTag, tt.wantSource)
			}
		})
	}

	if tag, source := Resolve(nil); tag != language.AmericanEnglish || source != SourceDefault {
		t.Fatalf("Resolve(nil) = %v, %v", tag, source)
	}
}

func TestMiddlewareStoresTagAndPersistsQueryChoice(t *testing.T) {
	t.Parallel()

	var got language.Tag
	handler := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = TagFromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?lang=pt", nil))
	if got != language.BrazilianPortuguese {
		t.Fatalf("tag = %v, want pt-BR", got)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != LangCookieName || cookies[0].Value != "pt-BR" {
		t.Fatalf("cookies = %+v", cookies)
	}

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "pt-BR")
	handler.ServeHTTP(rr, req)
	if len(rr.Result().Cookies()) != 0 {
		t.Fatal("header-negotiated language should not set a cookie")
	}
}

func TestTagFromContextDefault(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if tag := TagFromContext(req.Context()); tag != language.AmericanEnglish {
		t.Fatalf("tag = %v, want en-US", tag)
	}
}

func TestLanguages(t *testing.T) {
	t.Parallel()

	options := Languages("/", language.BrazilianPortuguese, func(tag language.Tag) string {
		if tag == language.AmericanEnglish {
			return ""
		}
		return "Português"
	})
	if len(options) != 2 {
		t.Fatalf("len(options) = %d, want 2", len(options))
	}
	if options[0].Active || !options[1].Active {
		t.Fatalf("options = %+v, want pt-BR active", options)
	}
	if options[0].Label != "en-US" || options[0].URL != "/?lang=en-US" {
		t.Fatalf("options[0] = %+v", options[0])
	}
	if options[1].Label != "Português" {
		t.Fatalf("options[1] = %+v", options[1])
	}
}

func TestLanguageURL(t *testing.T) {
	t.Parallel()

	if got := LanguageURL("/tape", "filter=x", language.AmericanEnglish); got != "/tape?filter=x&lang=en-US" {
		t.Fatalf("LanguageURL = %q", got)
	}
	if got := LanguageURL(" ", "", language.BrazilianPortuguese); got != "/?lang=pt-BR" {
		t.Fatalf("LanguageURL empty path = %q", got)
	}
}

func TestPrinterTranslatesWebMessages(t *testing.T) {
	t.Parallel()

	if got := Printer(language.BrazilianPortuguese).Sprintf("web.title"); got != "Calculadora" {
		t.Fatalf("pt-BR title = %q", got)
	}
	if got := Printer(language.AmericanEnglish).Sprintf(LanguageKey(language.BrazilianPortuguese)); got != "Português" {
		t.Fatalf("language label = %q", got)
	}
}
