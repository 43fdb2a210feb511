package repl

import (
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/yndnr/stackkv-go/internal/server/kvserver"
)

// localCommands are handled by the REPL and never reach the server.
var localCommands = []string{"help", "history", "exit", "quit"}

// Completer completes the first word of a line: protocol verbs in upper
// case and local commands in lower case.
type Completer struct {
	commands []string
}

var _ readline.AutoCompleter = (*Completer)(nil)

// NewCompleter creates a new Completer.
func NewCompleter() *Completer {
	cmds := append(kvserver.Verbs(), localCommands...)
	sort.Strings(cmds)
	return &Completer{commands: cmds}
}

// Complete returns the commands matching prefix, ignoring case.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(strings.ToUpper(cmd), strings.ToUpper(prefix)) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}

// Do implements readline.AutoCompleter. Only the verb position is
// completed; keys and values are free text.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	head := string(line[:pos])
	if strings.ContainsAny(head, " \t") {
		return nil, 0
	}

	var out [][]rune
	for _, cmd := range c.Complete(head) {
		out = append(out, []rune(cmd[len(head):]+" "))
	}
	return out, len(head)
}
