package views

import (
	"testing"
	"time"
)

func TestSanitizeForTerminal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"keeps newline and tab", "a\nb\tc", "a\nb\tc"},
		{"escape sequence", "\x1b[2Jboom", "[2Jboom"},
		{"bell and del", "a\x07b\x7f", "ab"},
		{"skin tone", "\U0001F44D\U0001F3FB", "\U0001F44D"},
		{"zwj", "\U0001F468\u200d\U0001F469", "\U0001F468\U0001F469"},
		{"variation selector", "\u2764\ufe0f", "\u2764"},
		{"invalid utf8", "ok\xffok", "okok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeForTerminal(tt.in); got != tt.want {
				t.Errorf("sanitizeForTerminal(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSingleLine(t *testing.T) {
	if got := singleLine("  Ada\n  Lovelace\t "); got != "Ada Lovelace" {
		t.Errorf("singleLine = %q", got)
	}
}

func TestImageLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"data:image/png;base64,AAAA", "[image/png]"},
		{"data:;base64,AAAA", "[image]"},
		{"https://cdn.example.com/a.jpg", "[image https://cdn.example.com/a.jpg]"},
	}
	for _, tt := range tests {
		if got := imageLabel(tt.in); got != tt.want {
			t.Errorf("imageLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := formatClock(time.Time{}); got != "--:--" {
		t.Errorf("zero time = %q", got)
	}
	ts := time.Date(2024, 5, 1, 9, 7, 0, 0, time.Local)
	if got := formatClock(ts); got != "09:07" {
		t.Errorf("formatClock = %q, want 09:07", got)
	}
}
