package textutil

import (
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AC/DC: Live", "AC-DC- Live"},
		{"  What? <Now> ", "What Now"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLabelFileName(t *testing.T) {
	if got := LabelFileName(".png", "Orbital", "", "Snivilisation"); got != "Orbital - Snivilisation.png" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := LabelFileName(".png", " ", "?"); got != "label.png" {
		t.Fatalf("expected fallback name, got %q", got)
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken("Hello World!"); got != "hello_world" {
		t.Fatalf("SanitizeToken = %q", got)
	}
	if got := SanitizeToken("   "); got != "unknown" {
		t.Fatalf("SanitizeToken blank = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"Drama, Thriller", 50, "Drama, Thriller"},
		{"Science Fiction, Adventure", 12, "Science F..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.limit); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestMask(t *testing.T) {
	if got := Mask("abcdefgh"); got != "****efgh" {
		t.Fatalf("Mask = %q", got)
	}
	if got := Mask("abc"); got != "***" {
		t.Fatalf("Mask short = %q", got)
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"#", "Length"}, [][]string{{"1", "04:05"}, {"2"}}, []Align{AlignRight, AlignLeft})
	if !strings.Contains(out, "Length") || !strings.Contains(out, "04:05") {
		t.Fatalf("unexpected table:\n%s", out)
	}
	if strings.Contains(out, "LENGTH") {
		t.Fatalf("expected headers to keep their casing:\n%s", out)
	}
	if RenderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty output without headers")
	}
}

func TestTernary(t *testing.T) {
	if Ternary(true, "a", "b") != "a" || Ternary(false, 1, 2) != 2 {
		t.Fatal("Ternary returned wrong branch")
	}
}
