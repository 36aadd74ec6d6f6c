package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/matheus3301/chatterm/internal/tui/ui"
)

// HelpView displays key binding reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	hv.render()
	return hv
}

// Name implements Component.
func (hv *HelpView) Name() string { return "Help" }

// Start implements Component.
func (hv *HelpView) Start() { hv.ScrollToBeginning() }

// Stop implements Component.
func (hv *HelpView) Stop() {}

// Hints implements Component.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

func (hv *HelpView) render() {
	kc := colorTag(hv.theme.MenuKeyColor)
	key := func(k string) string { return fmt.Sprintf("[%s]%s[-:-:-]", kc, tview.Escape(k)) }

	_, _ = fmt.Fprintf(hv, `
  [::b]Global Keys[-:-:-]

  %-22s Command mode        %-22s Cancel / Go back
  %-22s Help                %-22s Quit immediately

  [::b]Users[-:-:-]

  %-22s Open conversation   %-22s Filter users
  %-22s Jump to Nth user    %-22s Move cursor
  %-22s My profile          %-22s Partner profile
  %-22s Reload users

  [::b]Conversation[-:-:-]

  %-22s Focus composer      %-22s Send (in composer)
  %-22s Attach image        %-22s Remove image
  %-22s Back to users

  [::b]Commands (: mode)[-:-:-]

  %-34s Open chat by name
  %-34s Attach an image file
  %-34s Remove the attached image
  %-34s Show your profile
  %-34s Reload the user list
  %-34s Log out
  %-34s Show this help
  %-34s Quit application
`,
		key(":"), key("Esc"),
		key("?"), key("Ctrl-C"),
		key("Enter"), key("/"),
		key("1-9"), key("j/k"),
		key("p"), key("d"),
		key("r"),
		key("i"), key("Enter"),
		key("a"), key("x"),
		key("Esc"),
		key(":chat <name>"),
		key(":attach <path>"),
		key(":detach"),
		key(":profile"),
		key(":users"),
		key(":logout"),
		key(":help / :h"),
		key(":quit / :q"),
	)
}
