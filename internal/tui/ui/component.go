package ui

// MenuHint describes a keyboard shortcut for display in the menu bar.
type MenuHint struct {
	Key         string
	Description string
}

// Component is implemented by every page the shell can push.
// Start runs when the page becomes visible, Stop when it is left.
type Component interface {
	Name() string
	Start()
	Stop()
	Hints() []MenuHint
}
