package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// menuRows is the header height available to the hint columns.
const menuRows = 5

// Menu displays keyboard shortcut hints in columns.
type Menu struct {
	*tview.TextView
	theme *Theme
}

// NewMenu creates a new menu hint panel.
func NewMenu(theme *Theme) *Menu {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 2, 0)

	return &Menu{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders hints top to bottom, wrapping into a new column every
// menuRows entries.
func (m *Menu) Update(hints []MenuHint) {
	m.Clear()
	if len(hints) == 0 {
		return
	}

	kc := colorName(m.theme.MenuKeyColor)
	cols := (len(hints) + menuRows - 1) / menuRows
	width := 0
	for _, h := range hints {
		width = max(width, len(h.Key)+len(h.Description)+3)
	}

	var sb strings.Builder
	for r := 0; r < menuRows && r < len(hints); r++ {
		for c := 0; c < cols; c++ {
			i := c*menuRows + r
			if i >= len(hints) {
				break
			}
			h := hints[i]
			cell := fmt.Sprintf("<%s> %s", h.Key, h.Description)
			fmt.Fprintf(&sb, "[%s::b]<%s>[-:-:-] %s", kc, tview.Escape(h.Key), h.Description)
			if c < cols-1 {
				sb.WriteString(strings.Repeat(" ", width-len(cell)+2))
			}
		}
		sb.WriteByte('\n')
	}
	_, _ = fmt.Fprint(m, sb.String())
}
