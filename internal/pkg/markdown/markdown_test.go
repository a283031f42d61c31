package markdown

import (
	"strings"
	"testing"
)

func TestRenderSanitises(t *testing.T) {
	got, err := Render("# Title\n\nHello **world** <script>alert(1)</script> [x](javascript:alert(1))")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(got, "<h1") || !strings.Contains(got, "<strong>world</strong>") {
		t.Fatalf("markdown not rendered: %s", got)
	}
	if strings.Contains(got, "<script") || strings.Contains(got, "javascript:") {
		t.Fatalf("unsafe output: %s", got)
	}
}

func TestRenderEmpty(t *testing.T) {
	if got, err := Render("   "); err != nil || got != "" {
		t.Fatalf("Render(blank) = %q, %v", got, err)
	}
}
