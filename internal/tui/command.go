package tui

import (
	"fmt"
	"strings"
)

// Command represents a parsed command.
type Command struct {
	Name string
	Args string
}

// CommandKind identifies a known command after alias resolution.
type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdQuit
	CmdHelp
	CmdLogout
	CmdProfile
	CmdUsers
	CmdChat
	CmdAttach
	CmdDetach
	CmdBack
)

var commandAliases = map[string]CommandKind{
	"q":       CmdQuit,
	"quit":    CmdQuit,
	"h":       CmdHelp,
	"help":    CmdHelp,
	"logout":  CmdLogout,
	"profile": CmdProfile,
	"me":      CmdProfile,
	"users":   CmdUsers,
	"reload":  CmdUsers,
	"chat":    CmdChat,
	"c":       CmdChat,
	"attach":  CmdAttach,
	"detach":  CmdDetach,
	"back":    CmdBack,
}

// ParseCommand parses a command string (without the leading ':').
func ParseCommand(input string) Command {
	input = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), ":"))
	parts := strings.SplitN(input, " ", 2)
	cmd := Command{Name: strings.ToLower(parts[0])}
	if len(parts) > 1 {
		cmd.Args = strings.TrimSpace(parts[1])
	}
	return cmd
}

// Kind resolves the command name.
func (c Command) Kind() CommandKind {
	return commandAliases[c.Name]
}

// Validate reports missing arguments for commands that need them.
func (c Command) Validate() error {
	switch c.Kind() {
	case CmdUnknown:
		return fmt.Errorf("unknown command %q", c.Name)
	case CmdChat, CmdAttach:
		if c.Args == "" {
			return fmt.Errorf(":%s needs an argument", c.Name)
		}
	}
	return nil
}
