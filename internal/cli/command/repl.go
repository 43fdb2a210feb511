package command

import (
	"os"

	"github.com/chzyer/readline"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/stackkv-go/internal/cli/repl"
)

// replAction runs the interactive session. Piped stdin is read without
// line editing so scripts like `stackkv-cli < cmds.txt` work.
func replAction(c *cli.Context) error {
	if c.NArg() > 0 {
		return cli.Exit("unknown command "+c.Args().First()+"; use exec to send a single command", 1)
	}

	cfg := Settings(c)
	client, err := dial(c)
	if err != nil {
		return err
	}
	defer client.Close()

	var reader repl.LineReader
	history := repl.NewHistory("", 0)
	if readline.DefaultIsTerminal() {
		completer := repl.NewCompleter()
		reader, err = repl.NewReadlineReader(completer)
		if err != nil {
			return err
		}
		history = repl.NewHistory(cfg.HistoryFile, repl.DefaultHistorySize)
	} else {
		reader = repl.NewPlainReader(os.Stdin, nil)
	}
	defer reader.Close()

	r := repl.New(repl.Config{
		Reader:    reader,
		Sender:    client,
		Output:    stdout(c),
		Formatter: formatter(cfg),
		History:   history,
		Label:     cfg.Server,
	})
	return r.Run()
}
