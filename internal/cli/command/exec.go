package command

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/stackkv-go/internal/cli/connection"
)

// ExitCommandFailed is the exit code when --strict stops on an error reply.
const ExitCommandFailed = 2

// ExecCommand returns the exec subcommand.
func ExecCommand() *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Aliases:   []string{"x"},
		Usage:     "Send commands on one connection and print the replies",
		ArgsUsage: "[COMMAND [ARGS...]]",
		Description: `With arguments, sends them as one command line:

   stackkv-cli exec PUT greeting hello

With --file, sends each non-empty line of the file ("-" for stdin).
All lines share one session, so BEGIN in the file opens a transaction
for the lines that follow. Lines starting with # are skipped.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read commands from `FILE`",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Stop at the first error reply and exit non-zero",
			},
		},
		Action: execAction,
	}
}

func execAction(c *cli.Context) error {
	lines, err := execLines(c)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return cli.Exit("exec: nothing to send; pass a command or --file", 1)
	}

	client, err := dial(c)
	if err != nil {
		return err
	}
	defer client.Close()

	return runLines(c, client, lines)
}

func runLines(c *cli.Context, client *connection.Client, lines []string) error {
	cfg := Settings(c)
	f := formatter(cfg)
	w := stdout(c)

	for _, line := range lines {
		resp, err := client.Send(line)
		if err != nil {
			return fmt.Errorf("%s: %w", line, err)
		}
		if err := f.Format(w, resp); err != nil {
			return err
		}
		if !resp.OK() && c.Bool("strict") {
			return cli.Exit("", ExitCommandFailed)
		}
		if !client.Connected() {
			return nil
		}
	}
	return nil
}

func execLines(c *cli.Context) ([]string, error) {
	if c.NArg() > 0 {
		return []string{strings.Join(c.Args().Slice(), " ")}, nil
	}

	path := c.String("file")
	if path == "" {
		return nil, nil
	}

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return readScript(r)
}

// readScript returns the command lines of a script.
func readScript(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}
