package haproxy

import (
	"errors"
	"strings"
)

const (
	separator = ';'
	escape    = '\\'
)

// ErrRequireEscapeSemicolon is returned when a command body contains a
// semicolon that is not preceded by a backslash.
var ErrRequireEscapeSemicolon = errors.New("haproxy: semicolon in command must be escaped")

// Command is a validated stats socket command.
type Command struct {
	text string
}

// NewCommand validates text and returns it as a Command. The escape
// character is carried through to the wire unchanged.
func NewCommand(text string) (Command, error) {
	var prev rune
	for _, r := range text {
		if r == separator && prev != escape {
			return Command{}, ErrRequireEscapeSemicolon
		}
		prev = r
	}
	return Command{text: text}, nil
}

// ShowInfo returns the "show info" command.
func ShowInfo() Command { return Command{text: "show info"} }

// ShowStat returns the "show stat" command.
func ShowStat() Command { return Command{text: "show stat"} }

// ShowEnv returns the "show env" command.
func ShowEnv() Command { return Command{text: "show env"} }

// ShowInfoJSON returns the "show info json" command.
func ShowInfoJSON() Command { return Command{text: "show info json"} }

// ShowStatJSON returns the "show stat json" command.
func ShowStatJSON() Command { return Command{text: "show stat json"} }

func (c Command) String() string { return c.text }

// WireBytes returns the command terminated by CRLF.
func (c Command) WireBytes() []byte {
	return []byte(c.text + "\r\n")
}

// Commands is a pipelined group of commands. Members are assumed valid.
type Commands []Command

func (cs Commands) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.text
	}
	return strings.Join(parts, string(separator))
}

// WireBytes returns the commands joined by ';' and terminated by CRLF.
func (cs Commands) WireBytes() []byte {
	return []byte(cs.String() + "\r\n")
}
