package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/tui/ui"
)

const (
	placeholderNoPartner       = "Select a user to start chatting"
	placeholderLoadingMessages = "Loading messages..."
	placeholderNoMessages      = "No messages yet"
)

// MessageThread shows the conversation with the selected partner above
// the composer.
type MessageThread struct {
	*tview.Flex
	theme      *ui.Theme
	messages   *tview.TextView
	attachment *tview.TextView
	composer   *tview.InputField

	partner  *api.User
	online   bool
	msgs     []api.Message
	isOwn    func(api.Message) bool
	loading  bool
	busy     bool
	onSend   func(text string)
	onChange func(text string)
}

// NewMessageThread creates a new message thread view.
func NewMessageThread(theme *ui.Theme) *MessageThread {
	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetTextColor(theme.FgColor)
	messages.SetTitle(" Messages ")
	messages.SetTitleColor(theme.TitleColor)

	attachment := tview.NewTextView().
		SetDynamicColors(true)
	attachment.SetBackgroundColor(theme.BgColor)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetPlaceholder("Type a message...").
		SetFieldWidth(0)
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetFieldBackgroundColor(theme.BgColor)
	composer.SetFieldTextColor(theme.FgColor)
	composer.SetPlaceholderTextColor(theme.MutedColor)
	composer.SetLabelColor(theme.MenuKeyColor)
	composer.SetTitle(" Compose (i to focus) ")
	composer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, true).
		AddItem(attachment, 0, 0, false).
		AddItem(composer, 3, 0, false)

	mt := &MessageThread{
		Flex:       flex,
		theme:      theme,
		messages:   messages,
		attachment: attachment,
		composer:   composer,
		isOwn:      func(api.Message) bool { return false },
	}

	composer.SetChangedFunc(func(text string) {
		if mt.onChange != nil {
			mt.onChange(text)
		}
	})
	composer.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && mt.onSend != nil && !mt.busy {
			mt.onSend(composer.GetText())
		}
	})

	mt.render()
	return mt
}

// Name implements Component.
func (mt *MessageThread) Name() string {
	if mt.partner != nil {
		return mt.partner.DisplayName()
	}
	return "Messages"
}

// Start implements Component.
func (mt *MessageThread) Start() {}

// Stop implements Component.
func (mt *MessageThread) Stop() {}

// Hints implements Component.
func (mt *MessageThread) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "i", Description: "Compose"},
		{Key: "a", Description: "Attach image"},
		{Key: "x", Description: "Remove image"},
		{Key: "Esc", Description: "Back"},
	}
}

// SetOnSend sets the callback for Enter in the composer.
func (mt *MessageThread) SetOnSend(fn func(text string)) {
	mt.onSend = fn
}

// SetOnChange sets the callback for every edit of the composer text.
func (mt *MessageThread) SetOnChange(fn func(text string)) {
	mt.onChange = fn
}

// SetPartner binds the view to u (nil for none) and its presence.
func (mt *MessageThread) SetPartner(u *api.User, online bool) {
	mt.partner = u
	mt.online = online
	mt.render()
}

// Update replaces the displayed messages.
func (mt *MessageThread) Update(msgs []api.Message, isOwn func(api.Message) bool, loading bool) {
	mt.msgs = msgs
	if isOwn != nil {
		mt.isOwn = isOwn
	}
	mt.loading = loading
	mt.render()
}

// SetAttachment shows the pending image name, or hides the row for "".
func (mt *MessageThread) SetAttachment(name string) {
	mt.attachment.Clear()
	if name == "" {
		mt.ResizeItem(mt.attachment, 0, 0)
		return
	}
	mt.ResizeItem(mt.attachment, 1, 0)
	_, _ = fmt.Fprintf(mt.attachment, " [%s]📎 %s[-] [::d](x to remove)[-:-:-]",
		colorTag(mt.theme.CounterColor), tview.Escape(singleLine(name)))
}

// SetBusy disables the composer while a send is in flight.
func (mt *MessageThread) SetBusy(busy bool) {
	mt.busy = busy
	mt.composer.SetDisabled(busy)
	if busy {
		mt.composer.SetTitle(" Sending... ")
	} else {
		mt.composer.SetTitle(" Compose (i to focus) ")
	}
}

// ClearInput empties the composer field.
func (mt *MessageThread) ClearInput() {
	mt.composer.SetText("")
}

// Messages returns the messages text view (for focus management).
func (mt *MessageThread) Messages() *tview.TextView {
	return mt.messages
}

// Composer returns the composer input field (for focus management).
func (mt *MessageThread) Composer() *tview.InputField {
	return mt.composer
}

func (mt *MessageThread) render() {
	mt.messages.Clear()

	if mt.partner == nil {
		mt.messages.SetTitle(" Messages ")
	} else {
		status, color := "Offline", mt.theme.OfflineColor
		if mt.online {
			status, color = "Online", mt.theme.OnlineColor
		}
		mt.messages.SetTitle(fmt.Sprintf(" %s [%s]● %s[-] ",
			tview.Escape(singleLine(mt.partner.DisplayName())), colorTag(color), status))
	}

	_, _, width, _ := mt.messages.GetInnerRect()
	_, _ = fmt.Fprint(mt.messages, renderThread(mt.theme, mt.partner != nil, mt.loading, mt.msgs, mt.isOwn, width))
	mt.messages.ScrollToEnd()
}

// renderThread produces the tagged text of the message pane. width <= 0
// disables right alignment of own messages.
func renderThread(theme *ui.Theme, hasPartner, loading bool, msgs []api.Message, isOwn func(api.Message) bool, width int) string {
	muted := colorTag(theme.MutedColor)
	switch {
	case !hasPartner:
		return fmt.Sprintf("\n [%s]%s[-]", muted, placeholderNoPartner)
	case loading && len(msgs) == 0:
		return fmt.Sprintf("\n [%s]%s[-]", muted, placeholderLoadingMessages)
	case len(msgs) == 0:
		return fmt.Sprintf("\n [%s]%s[-]", muted, placeholderNoMessages)
	}

	var sb strings.Builder
	for _, m := range msgs {
		own := isOwn(m)
		color := colorTag(theme.PeerMessageColor)
		if own {
			color = colorTag(theme.OwnMessageColor)
		}

		var lines []string
		if m.Text != "" {
			lines = append(lines, strings.Split(sanitizeForTerminal(m.Text), "\n")...)
		}
		if m.Image != "" {
			lines = append(lines, imageLabel(m.Image))
		}
		if len(lines) == 0 {
			lines = []string{""}
		}
		stamp := formatClock(m.CreatedAt)

		for i, line := range lines {
			text := tview.Escape(line)
			tagged := fmt.Sprintf("[%s]%s[-]", color, text)
			plainWidth := tview.TaggedStringWidth(text)
			if i == len(lines)-1 {
				tagged += fmt.Sprintf(" [%s]%s[-]", muted, stamp)
				plainWidth += 1 + len(stamp)
			}
			if own && width > 0 && plainWidth < width {
				sb.WriteString(strings.Repeat(" ", width-plainWidth))
			}
			sb.WriteString(tagged)
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func colorTag(c tcell.Color) string {
	return ui.ColorTag(c)
}
