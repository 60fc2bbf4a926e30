package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		value  string
		want   language.Tag
		wantOK bool
	}{
		{value: "en-US", want: language.AmericanEnglish, wantOK: true},
		{value: "pt-BR", want: language.BrazilianPortuguese, wantOK: true},
		{value: "pt", want: language.BrazilianPortuguese, wantOK: true},
		{value: "", want: language.AmericanEnglish},
		{value: "not a tag!", want: language.AmericanEnglish},
		{value: "ja", want: language.AmericanEnglish},
	}
	for _, tt := range tests {
		got, ok := ParseTag(tt.value)
		if ok != tt.wantOK || got != tt.want {
			t.Fatalf("ParseTag(%q) = %s, %v, want %s, %v", tt.value, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestMatchTags(t *testing.T) {
	if got := MatchTags([]language.Tag{language.Japanese, language.Portuguese}); got != language.BrazilianPortuguese {
		t.Fatalf("MatchTags = %s, want pt-BR", got)
	}
	if got := MatchTags(nil); got != DefaultTag() {
		t.Fatalf("MatchTags(nil) = %s, want default", got)
	}
}

func TestSupportedTagsReturnsCopy(t *testing.T) {
	tags := SupportedTags()
	tags[0] = language.Japanese
	if SupportedTags()[0] != language.AmericanEnglish {
		t.Fatal("SupportedTags exposed internal slice")
	}
}
