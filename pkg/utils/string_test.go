package utils

import (
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestNormalizeWhitespace(t *testing.T) {
	got := NewStringHelper().NormalizeWhitespace("  Rust\n\tis   fast ")
	if got != "Rust is fast" {
		t.Errorf("Unexpected result %q", got)
	}
}

func TestTruncateWidth(t *testing.T) {
	s := NewStringHelper()

	if got := s.TruncateWidth("short", 10); got != "short" {
		t.Errorf("Expected untouched string, got %q", got)
	}

	got := s.TruncateWidth("Как мы переписали сервис на Go", 12)
	if runewidth.StringWidth(got) > 12 {
		t.Errorf("Expected at most 12 cells, got %d (%q)", runewidth.StringWidth(got), got)
	}

	if got != "Как мы пе..." {
		t.Errorf("Unexpected truncation %q", got)
	}
}
