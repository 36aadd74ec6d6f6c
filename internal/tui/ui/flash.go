package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// FlashLevel represents the severity of a flash message.
type FlashLevel int

const (
	FlashInfo FlashLevel = iota
	FlashErr
)

// FlashBar is the one-line notification area under the pages.
type FlashBar struct {
	*tview.TextView
	theme *Theme
	shown string
}

// NewFlashBar creates a new flash notification bar.
func NewFlashBar(theme *Theme) *FlashBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)

	return &FlashBar{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders text, or clears the bar when text is empty. It reports
// whether the visible content changed.
func (fb *FlashBar) Update(text string, level FlashLevel) bool {
	color := colorName(fb.theme.FlashInfoColor)
	if level == FlashErr {
		color = colorName(fb.theme.FlashErrColor)
	}
	rendered := ""
	if text != "" {
		rendered = fmt.Sprintf(" [%s]%s[-]", color, tview.Escape(text))
	}
	if rendered == fb.shown {
		return false
	}
	fb.shown = rendered
	fb.Clear()
	_, _ = fmt.Fprint(fb, rendered)
	return true
}
