package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Crumbs is a breadcrumb bar showing the current navigation path.
type Crumbs struct {
	*tview.TextView
	theme *Theme
}

// NewCrumbs creates a new breadcrumb bar.
func NewCrumbs(theme *Theme) *Crumbs {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)

	return &Crumbs{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders labels as a trail; the last one is the active page.
func (c *Crumbs) Update(labels []string) {
	c.Clear()
	if len(labels) == 0 {
		return
	}

	active := fmt.Sprintf("[%s:%s:b]", colorName(c.theme.CrumbActiveFg), colorName(c.theme.CrumbActiveBg))
	inactive := fmt.Sprintf("[%s:%s:]", colorName(c.theme.CrumbInactiveFg), colorName(c.theme.CrumbInactiveBg))

	parts := make([]string, len(labels))
	for i, label := range labels {
		style := inactive
		if i == len(labels)-1 {
			style = active
		}
		parts[i] = fmt.Sprintf("%s <%s> [-:-:-]", style, tview.Escape(strings.ToLower(label)))
	}
	_, _ = fmt.Fprint(c, strings.Join(parts, " "))
}

// colorName returns a tview-compatible color name string.
func colorName(c tcell.Color) string {
	for name, val := range tcell.ColorNames {
		if val == c {
			return name
		}
	}
	return fmt.Sprintf("#%06x", c.Hex())
}
