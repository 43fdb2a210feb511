package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// ErrInterrupt is returned by LineReader.Readline when the user presses
// Ctrl+C.
var ErrInterrupt = errors.New("interrupt")

// LineReader reads one line of user input at a time.
type LineReader interface {
	// Readline returns the next line without its terminator, io.EOF at
	// end of input, or ErrInterrupt.
	Readline() (string, error)
	SetPrompt(prompt string)
	// AddHistory makes line available to history navigation.
	AddHistory(line string)
	Close() error
}

// readlineReader is the interactive terminal reader.
type readlineReader struct {
	rl *readline.Instance
}

// NewReadlineReader creates a terminal reader with completion. History
// persistence is handled by History, not by readline.
func NewReadlineReader(completer *Completer) (LineReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          defaultPrompt,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}
	return &readlineReader{rl: rl}, nil
}

func (r *readlineReader) Readline() (string, error) {
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return line, ErrInterrupt
	}
	return line, err
}

func (r *readlineReader) SetPrompt(prompt string) {
	r.rl.SetPrompt(prompt)
}

func (r *readlineReader) AddHistory(line string) {
	_ = r.rl.SaveHistory(line)
}

func (r *readlineReader) Close() error {
	return r.rl.Close()
}

// plainReader reads from any io.Reader, echoing the prompt to out. It
// serves piped input and tests.
type plainReader struct {
	br     *bufio.Reader
	out    io.Writer
	prompt string
}

// NewPlainReader creates a reader without line editing.
func NewPlainReader(in io.Reader, out io.Writer) LineReader {
	return &plainReader{
		br:     bufio.NewReader(in),
		out:    out,
		prompt: defaultPrompt,
	}
}

func (r *plainReader) Readline() (string, error) {
	if r.out != nil {
		fmt.Fprint(r.out, r.prompt)
	}
	line, err := r.br.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (r *plainReader) SetPrompt(prompt string) {
	r.prompt = prompt
}

func (r *plainReader) AddHistory(string) {}

func (r *plainReader) Close() error {
	return nil
}
