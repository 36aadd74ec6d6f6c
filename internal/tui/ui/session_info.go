package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// SessionData holds what the header shows about the current session.
type SessionData struct {
	Profile string
	User    string
	Email   string
	Status  string
	Online  int
	Server  string
}

// SessionInfo displays session metadata in the header.
type SessionInfo struct {
	*tview.TextView
	theme *Theme
}

// NewSessionInfo creates a new session info panel.
func NewSessionInfo(theme *Theme) *SessionInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &SessionInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders the session info.
func (si *SessionInfo) Update(data *SessionData) {
	si.Clear()
	if data == nil {
		return
	}

	fg := colorName(si.theme.FgColor)
	ct := colorName(si.theme.CounterColor)

	user := orDash(data.User)
	email := orDash(data.Email)

	text := fmt.Sprintf(
		"[%s::b]Profile:[-:-:-] [%s]%s[-]\n"+
			"[%s::b]User:[-:-:-]    [%s]%s[-]\n"+
			"[%s::b]Email:[-:-:-]   [%s]%s[-]\n"+
			"[%s::b]Status:[-:-:-]  [%s]%s[-]\n"+
			"[%s::b]Online:[-:-:-]  [%s]%d[-]\n"+
			"[%s::b]Server:[-:-:-]  [%s]%s[-]",
		fg, ct, tview.Escape(data.Profile),
		fg, ct, tview.Escape(user),
		fg, ct, tview.Escape(email),
		fg, ct, data.Status,
		fg, ct, data.Online,
		fg, ct, tview.Escape(data.Server),
	)

	_, _ = fmt.Fprint(si, text)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
