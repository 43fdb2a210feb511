package repl

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yndnr/stackkv-go/internal/cli/output"
	"github.com/yndnr/stackkv-go/internal/server/kvserver"
)

const defaultPrompt = "stackkv> "

const helpText = `Commands are sent to the server as typed, one per line:

  BEGIN | START        open a (nested) transaction
  COMMIT               commit the innermost transaction
  ROLLBACK             discard the innermost transaction
  GET <key>            read a key
  PUT <key> <value>    write a key
  DELETE <key>         remove a key
  END                  close the connection

Local commands:

  help                 show this help
  history              list previous commands
  exit, quit           leave (open transactions are rolled back)
`

// Sender sends one protocol line and returns the server's reply.
type Sender interface {
	Send(line string) (kvserver.Response, error)
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	reader    LineReader
	sender    Sender
	output    io.Writer
	formatter output.Formatter
	history   *History
	label     string

	// depth mirrors the session's transaction nesting for the prompt.
	depth int
}

// Config holds REPL dependencies.
type Config struct {
	Reader    LineReader
	Sender    Sender
	Output    io.Writer
	Formatter output.Formatter
	History   *History
	// Label is shown in the prompt, typically the server address.
	Label string
}

// New creates a new REPL instance.
func New(cfg Config) *REPL {
	r := &REPL{
		reader:    cfg.Reader,
		sender:    cfg.Sender,
		output:    cfg.Output,
		formatter: cfg.Formatter,
		history:   cfg.History,
		label:     cfg.Label,
	}
	if r.formatter == nil {
		r.formatter = &output.TextFormatter{}
	}
	if r.history == nil {
		r.history = NewHistory("", 0)
	}
	return r
}

// Run starts the REPL loop. It returns nil on exit, quit, END or end of
// input, and an error if the connection is lost.
func (r *REPL) Run() error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "warning: load history: %v\n", err)
	}
	for _, entry := range r.history.Entries() {
		r.reader.AddHistory(entry)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			fmt.Fprintf(r.output, "warning: save history: %v\n", err)
		}
	}()

	for {
		r.reader.SetPrompt(r.prompt())

		line, err := r.reader.Readline()
		if errors.Is(err, ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.output)
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.history.Add(line)
		r.reader.AddHistory(line)

		done, err := r.execute(line)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// execute handles one line. done reports that the session is over.
func (r *REPL) execute(line string) (done bool, err error) {
	switch strings.ToLower(line) {
	case "exit", "quit":
		return true, nil
	case "help":
		fmt.Fprint(r.output, helpText)
		return false, nil
	case "history":
		for i, entry := range r.history.Entries() {
			fmt.Fprintf(r.output, "%5d  %s\n", i+1, entry)
		}
		return false, nil
	}

	resp, err := r.sender.Send(line)
	if err != nil {
		return true, fmt.Errorf("connection lost: %w", err)
	}
	r.track(line, resp)

	if err := r.formatter.Format(r.output, resp); err != nil {
		return false, err
	}
	return line == kvserver.EndCommand, nil
}

// track updates the local depth from a command and its reply.
func (r *REPL) track(line string, resp kvserver.Response) {
	if kvserver.EndedTransaction(resp) {
		r.decDepth()
		return
	}
	if !resp.OK() {
		return
	}

	cmd, err := kvserver.ParseCommand(line)
	if err != nil {
		return
	}
	switch cmd.Verb {
	case kvserver.VerbBegin:
		r.depth++
	case kvserver.VerbCommit, kvserver.VerbRollback:
		r.decDepth()
	}
}

func (r *REPL) decDepth() {
	if r.depth > 0 {
		r.depth--
	}
}

// Depth returns the tracked transaction depth.
func (r *REPL) Depth() int {
	return r.depth
}

func (r *REPL) prompt() string {
	var b strings.Builder
	b.WriteString("stackkv")
	if r.label != "" {
		b.WriteString("@" + r.label)
	}
	if r.depth > 0 {
		b.WriteString("(tx:" + strconv.Itoa(r.depth) + ")")
	}
	b.WriteString("> ")
	return b.String()
}
