package command

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/stackkv-go/internal/cli/config"
	"github.com/yndnr/stackkv-go/internal/cli/connection"
	"github.com/yndnr/stackkv-go/internal/cli/output"
	"github.com/yndnr/stackkv-go/internal/infra/buildinfo"
)

const metaConfig = "cliConfig"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "stackkv-cli",
		Usage:   "StackKV command-line client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Action:  replAction,
		Commands: []*cli.Command{
			ExecCommand(),
			StatsCommand(),
			HealthCommand(),
			ConfigCommand(),
		},
		Before: loadSettings,
	}
}

// globalFlags returns the global CLI flags. Empty values defer to the
// config file and STACKKV_* variables.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "CLI config file",
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "profile",
			Aliases: []string{"p"},
			Usage:   "Named connection profile from the config file",
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Server address (host:port, or socket path with --network unix)",
		},
		&cli.StringFlag{
			Name:  "network",
			Usage: "Dial network: tcp or unix",
		},
		&cli.StringFlag{
			Name:  "admin",
			Usage: "Admin HTTP address for stats and health",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: text, json, yaml",
		},
		&cli.StringFlag{
			Name:  "timeout",
			Usage: "Per-request timeout (e.g. 5s)",
		},
	}
}

// loadSettings resolves the effective configuration once per run.
func loadSettings(c *cli.Context) error {
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}

	fileCfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	flags := map[string]string{}
	for _, name := range []string{"profile", "server", "network", "admin", "output", "timeout"} {
		flags[name] = c.String(name)
	}

	cfg, err := config.Merge(fileCfg, config.EnvMap(), flags)
	if err != nil {
		return err
	}
	if _, err := output.ParseFormat(cfg.Output); err != nil {
		return err
	}

	c.App.Metadata[metaConfig] = cfg
	return nil
}

// Settings returns the resolved configuration for the run.
func Settings(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

func formatter(cfg *config.CLIConfig) output.Formatter {
	f, _ := output.ParseFormat(cfg.Output)
	return output.NewFormatter(f)
}

// dial opens a protocol connection using the resolved settings.
func dial(c *cli.Context) (*connection.Client, error) {
	cfg := Settings(c)
	client := connection.NewClient(cfg.Server,
		connection.WithNetwork(cfg.Network),
		connection.WithTimeout(cfg.Timeout),
	)
	if err := client.Dial(context.Background()); err != nil {
		return nil, err
	}
	return client, nil
}

func stdout(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

// PrintError prints an error message to the app's error writer.
func PrintError(c *cli.Context, format string, args ...any) {
	w := c.App.ErrWriter
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "error: "+format+"\n", args...)
}
