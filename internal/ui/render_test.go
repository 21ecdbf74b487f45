package ui

import (
	"strings"
	"testing"
)

func TestRenderCatalog(t *testing.T) {
	rows := []CatalogRow{
		{Name: "globals", Desc: "global scalars", HasExpect: true, Expect: 3},
		{Name: "loop_for", Desc: "counting loop"},
	}
	out := RenderCatalog("program catalog", rows, 80)
	for _, want := range []string{"program catalog", "globals", "loop_for", "main -> 3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("catalog output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "main -> 0") {
		t.Fatalf("expectation rendered for a program without one:\n%s", out)
	}
}

func TestResultLine(t *testing.T) {
	line := ResultLine("structs", "checked", "main -> 20", 80)
	for _, want := range []string{"structs", "checked", "main -> 20"} {
		if !strings.Contains(line, want) {
			t.Fatalf("result line missing %q: %s", want, line)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly ten..", 13, "exactly ten.."},
		{"a very long description here", 10, "a ve..."},
		{"abcdef", 2, "ab"},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
