package views

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/tui/ui"
)

// ProfileView shows a user's details. The avatar reference is rendered as
// a QR code so it can be opened on another device.
type ProfileView struct {
	*tview.TextView
	theme *ui.Theme
	user  *api.User
}

// NewProfileView creates a new profile view.
func NewProfileView(theme *ui.Theme) *ProfileView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Profile ")
	tv.SetTitleColor(theme.TitleColor)

	return &ProfileView{
		TextView: tv,
		theme:    theme,
	}
}

// Name implements Component.
func (pv *ProfileView) Name() string { return "Profile" }

// Start implements Component.
func (pv *ProfileView) Start() { pv.ScrollToBeginning() }

// Stop implements Component.
func (pv *ProfileView) Stop() {}

// Hints implements Component.
func (pv *ProfileView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

// Update renders u with its presence.
func (pv *ProfileView) Update(u *api.User, online bool) {
	pv.user = u
	pv.Clear()
	if u == nil {
		return
	}

	fg := colorTag(pv.theme.FgColor)
	ct := colorTag(pv.theme.CounterColor)

	presence := "Offline"
	if online {
		presence = "Online"
	}

	_, _ = fmt.Fprintf(pv,
		"\n [%s::b]Name:[-:-:-]    [%s]%s[-]\n"+
			" [%s::b]Email:[-:-:-]   [%s]%s[-]\n"+
			" [%s::b]ID:[-:-:-]      [%s]%s[-]\n"+
			" [%s::b]Status:[-:-:-]  [%s]%s[-]\n",
		fg, ct, tview.Escape(singleLine(u.DisplayName())),
		fg, ct, tview.Escape(orDash(singleLine(u.Email))),
		fg, ct, tview.Escape(u.ID),
		fg, ct, presence,
	)

	if u.ProfilePic == "" {
		_, _ = fmt.Fprintf(pv, "\n [%s]No avatar set[-]\n", colorTag(pv.theme.MutedColor))
	} else {
		_, _ = fmt.Fprintf(pv, " [%s::b]Avatar:[-:-:-]  [%s]%s[-]\n\n%s",
			fg, ct, tview.Escape(avatarSummary(u.ProfilePic)), renderQR(u.ProfilePic))
	}
	pv.SetTitle(fmt.Sprintf(" %s ", tview.Escape(singleLine(u.DisplayName()))))
}

// avatarSummary shortens inline data URLs, which are too long to print.
func avatarSummary(ref string) string {
	if strings.HasPrefix(ref, "data:") {
		return imageLabel(ref)
	}
	return singleLine(ref)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// renderQR converts a string to a compact ASCII QR code using Unicode
// half-block characters. Two bitmap rows become one terminal line.
func renderQR(content string) string {
	qr, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "  (QR generation failed: " + tview.Escape(err.Error()) + ")"
	}
	return halfBlocks(qr.Bitmap())
}

func halfBlocks(bitmap [][]bool) string {
	var sb strings.Builder
	for y := 0; y < len(bitmap); y += 2 {
		sb.WriteString("  ")
		for x := range bitmap[y] {
			top := bitmap[y][x]
			bot := y+1 < len(bitmap) && bitmap[y+1][x]
			switch {
			case top && bot:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bot:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}
