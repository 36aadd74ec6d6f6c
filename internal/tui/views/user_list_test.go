package views

import (
	"strings"
	"testing"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/tui/ui"
)

var testUsers = []api.User{
	{ID: "u1", FullName: "Ada Lovelace", Email: "ada@example.com"},
	{ID: "u2", FullName: "Grace Hopper", Email: "grace@example.com"},
	{ID: "u3", FullName: "Alan Turing", Email: "alan@example.com"},
}

func onlineSet(ids ...string) func(string) bool {
	set := map[string]bool{}
	for _, id := range ids {
		set[id] = true
	}
	return func(id string) bool { return set[id] }
}

func TestUserListPlaceholders(t *testing.T) {
	ul := NewUserList(ui.DefaultTheme())

	ul.Update(nil, nil, true)
	if got := ul.Placeholder(); got != placeholderLoadingUsers {
		t.Errorf("loading placeholder = %q", got)
	}
	ul.Update(nil, nil, false)
	if got := ul.Placeholder(); got != placeholderNoUsers {
		t.Errorf("empty placeholder = %q", got)
	}
	ul.Update(testUsers, nil, false)
	if got := ul.Placeholder(); got != "" {
		t.Errorf("placeholder with users = %q", got)
	}
}

func TestUserListPresenceLabels(t *testing.T) {
	ul := NewUserList(ui.DefaultTheme())
	ul.Update(testUsers, onlineSet("u2"), false)

	for row, want := range map[int]string{1: "Offline", 2: "Online", 3: "Offline"} {
		if got := strings.TrimSpace(ul.GetCell(row, 2).Text); got != want {
			t.Errorf("row %d status = %q, want %q", row, got, want)
		}
	}
}

func TestUserListFilter(t *testing.T) {
	ul := NewUserList(ui.DefaultTheme())
	ul.Update(testUsers, nil, false)

	ul.SetFilter("ACE")
	if u := ul.UserByIndex(1); u == nil || u.ID != "u1" {
		t.Fatalf("first match = %+v, want Ada", u)
	}
	if u := ul.UserByIndex(2); u == nil || u.ID != "u2" {
		t.Errorf("second match = %+v, want Grace", u)
	}
	if ul.UserByIndex(3) != nil {
		t.Error("Alan should be filtered out")
	}

	ul.SetFilter("alan@")
	if u := ul.UserByIndex(1); u == nil || u.ID != "u3" {
		t.Errorf("email match = %+v, want Alan", u)
	}

	ul.SetFilter("nobody")
	if ul.Placeholder() != placeholderNoUsers {
		t.Errorf("placeholder = %q", ul.Placeholder())
	}
	ul.ClearFilter()
	if ul.UserByIndex(3) == nil {
		t.Error("filter not cleared")
	}
}

func TestUserListLookup(t *testing.T) {
	ul := NewUserList(ui.DefaultTheme())
	ul.Update(testUsers, nil, false)

	if u := ul.UserByName("hopper"); u == nil || u.ID != "u2" {
		t.Errorf("UserByName = %+v", u)
	}
	if ul.UserByName("knuth") != nil {
		t.Error("unexpected match")
	}
	if ul.UserByIndex(0) != nil || ul.UserByIndex(9) != nil {
		t.Error("out of range index matched")
	}
	if u := ul.SelectedUser(); u == nil || u.ID != "u1" {
		t.Errorf("SelectedUser = %+v, want first row", u)
	}
}
