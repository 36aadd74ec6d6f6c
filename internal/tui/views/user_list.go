package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/samber/lo"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/tui/ui"
)

const (
	placeholderLoadingUsers = "Loading users..."
	placeholderNoUsers      = "No users found"
)

// UserList is the sidebar of conversation partners with their presence.
type UserList struct {
	*tview.Table
	theme    *ui.Theme
	users    []api.User
	visible  []api.User
	online   func(id string) bool
	loading  bool
	filter   string
	activeID string
}

// NewUserList creates the sidebar table.
func NewUserList(theme *ui.Theme) *UserList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(" Users ")
	table.SetTitleColor(theme.TitleColor)

	return &UserList{
		Table:  table,
		theme:  theme,
		online: func(string) bool { return false },
	}
}

// Name implements Component.
func (ul *UserList) Name() string { return "Users" }

// Start implements Component.
func (ul *UserList) Start() {}

// Stop implements Component.
func (ul *UserList) Stop() {}

// Hints implements Component.
func (ul *UserList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
		{Key: "/", Description: "Filter"},
		{Key: "1-9", Description: "Jump"},
	}
}

// Update replaces the rows. online reports presence per user id.
func (ul *UserList) Update(users []api.User, online func(id string) bool, loading bool) {
	ul.users = users
	if online != nil {
		ul.online = online
	}
	ul.loading = loading
	ul.render()
}

// Refresh re-renders presence without new data.
func (ul *UserList) Refresh() {
	ul.render()
}

// SetActive marks the row of the open conversation.
func (ul *UserList) SetActive(userID string) {
	ul.activeID = userID
	ul.render()
}

// SetFilter sets the active filter text and re-renders.
func (ul *UserList) SetFilter(filter string) {
	ul.filter = filter
	ul.render()
}

// ClearFilter clears the active filter.
func (ul *UserList) ClearFilter() {
	ul.filter = ""
	ul.render()
}

func (ul *UserList) Filter() string { return ul.filter }

func (ul *UserList) render() {
	row, _ := ul.GetSelection()
	ul.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{"  ", 0},
		{" NAME", 1},
		{" STATUS", 0},
	}
	for col, h := range headers {
		ul.SetCell(0, col, tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(ul.theme.TableHeaderFg).
			SetBackgroundColor(ul.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp))
	}

	ul.visible = lo.Filter(ul.users, func(u api.User, _ int) bool {
		return ul.filter == "" || containsFold(u.DisplayName(), ul.filter) || containsFold(u.Email, ul.filter)
	})

	switch {
	case ul.loading && len(ul.users) == 0:
		ul.placeholder(placeholderLoadingUsers)
	case len(ul.visible) == 0:
		ul.placeholder(placeholderNoUsers)
	}

	for i, u := range ul.visible {
		online := ul.online(u.ID)
		dot, label, color := "○", "Offline", ul.theme.OfflineColor
		if online {
			dot, label, color = "●", "Online", ul.theme.OnlineColor
		}
		name := singleLine(u.DisplayName())
		if u.ID == ul.activeID {
			name = "» " + name
		}
		r := i + 1
		ul.SetCell(r, 0, tview.NewTableCell(" "+dot).SetTextColor(color))
		ul.SetCell(r, 1, tview.NewTableCell(" "+tview.Escape(name)).SetExpansion(1).SetTextColor(ul.theme.FgColor))
		ul.SetCell(r, 2, tview.NewTableCell(" "+label+" ").SetTextColor(color).SetAlign(tview.AlignRight))
	}

	if ul.filter != "" {
		ul.SetTitle(fmt.Sprintf(" Users (%d/%d) filter: %s ", len(ul.visible), len(ul.users), tview.Escape(ul.filter)))
	} else {
		ul.SetTitle(fmt.Sprintf(" Users (%d) ", len(ul.users)))
	}

	if len(ul.visible) > 0 {
		ul.Select(min(max(row, 1), len(ul.visible)), 0)
	}
}

func (ul *UserList) placeholder(text string) {
	ul.SetCell(1, 1, tview.NewTableCell(" "+text).
		SetSelectable(false).
		SetTextColor(ul.theme.MutedColor))
}

// SelectedUser returns the user under the cursor, or nil.
func (ul *UserList) SelectedUser() *api.User {
	row, _ := ul.GetSelection()
	return ul.UserByIndex(row)
}

// UserByIndex returns the Nth visible user (1-based), or nil.
func (ul *UserList) UserByIndex(n int) *api.User {
	if n < 1 || n > len(ul.visible) {
		return nil
	}
	u := ul.visible[n-1]
	return &u
}

// UserByName finds the first user whose name contains name, ignoring case.
func (ul *UserList) UserByName(name string) *api.User {
	u, ok := lo.Find(ul.users, func(u api.User) bool {
		return containsFold(u.DisplayName(), name)
	})
	if !ok {
		return nil
	}
	return &u
}

// Placeholder returns the text shown instead of rows, or "".
func (ul *UserList) Placeholder() string {
	if len(ul.visible) > 0 {
		return ""
	}
	return strings.TrimPrefix(ul.GetCell(1, 1).Text, " ")
}
