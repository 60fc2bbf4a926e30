package pagination

import "testing"

func TestClampPageSize(t *testing.T) {
	cfg := PageSizeConfig{Default: 20, Max: 100}
	tests := []struct {
		value int32
		want  int
	}{
		{value: 0, want: 20},
		{value: -5, want: 20},
		{value: 7, want: 7},
		{value: 100, want: 100},
		{value: 500, want: 100},
	}
	for _, tt := range tests {
		if got := ClampPageSize(tt.value, cfg); got != tt.want {
			t.Fatalf("ClampPageSize(%d) = %d, want %d", tt.value, got, tt.want)
		}
	}
	if got := ClampPageSize(0, PageSizeConfig{}); got != 1 {
		t.Fatalf("ClampPageSize with empty config = %d, want 1", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	token := EncodeCursor(42)
	if token == "" {
		t.Fatal("expected token")
	}
	got, err := DecodeCursor(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != 42 {
		t.Fatalf("position = %d, want 42", got)
	}
}

func TestCursorEdges(t *testing.T) {
	if EncodeCursor(0) != "" {
		t.Fatal("expected empty token for start position")
	}
	if got, err := DecodeCursor("  "); err != nil || got != 0 {
		t.Fatalf("DecodeCursor(blank) = %d, %v", got, err)
	}
	for _, bad := range []string{"!!!", "YWJj", "LTE"} {
		if _, err := DecodeCursor(bad); err == nil {
			t.Fatalf("DecodeCursor(%q) expected error", bad)
		}
	}
}
