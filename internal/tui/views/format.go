package views

import (
	"strings"
	"time"
)

// formatClock renders a message time as HH:mm in local time.
func formatClock(t time.Time) string {
	if t.IsZero() {
		return "--:--"
	}
	return t.Local().Format("15:04")
}

// imageLabel describes an attachment without rendering it. Inline data
// URLs report their MIME type, stored references their location.
func imageLabel(ref string) string {
	if ref == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(ref, "data:"); ok {
		mime, _, _ := strings.Cut(rest, ";")
		if mime == "" {
			mime = "image"
		}
		return "[" + mime + "]"
	}
	return "[image " + singleLine(ref) + "]"
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
