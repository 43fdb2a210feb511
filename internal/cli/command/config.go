package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/stackkv-go/internal/cli/config"
	"github.com/yndnr/stackkv-go/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: configPath,
			},
			{
				Name:  "init",
				Usage: "Write a default config file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: configInit,
			},
		},
	}
}

// configView is the printable form of config.CLIConfig.
type configView struct {
	Server         string                    `json:"server"`
	Network        string                    `json:"network"`
	Admin          string                    `json:"admin"`
	Output         string                    `json:"output"`
	Timeout        string                    `json:"timeout"`
	HistoryFile    string                    `json:"history_file"`
	Profiles       map[string]config.Profile `json:"profiles,omitempty"`
	CurrentProfile string                    `json:"current_profile,omitempty"`
}

// configShow prints the merged settings. Text output falls back to YAML
// since it mirrors the file format.
func configShow(c *cli.Context) error {
	cfg := Settings(c)
	view := configView{
		Server:         cfg.Server,
		Network:        cfg.Network,
		Admin:          cfg.Admin,
		Output:         cfg.Output,
		Timeout:        cfg.Timeout.String(),
		HistoryFile:    cfg.HistoryFile,
		Profiles:       cfg.Profiles,
		CurrentProfile: cfg.CurrentProfile,
	}

	f := formatter(cfg)
	if _, ok := f.(*output.TextFormatter); ok {
		f = &output.YAMLFormatter{}
	}
	return f.Format(stdout(c), view)
}

func configPath(c *cli.Context) error {
	_, err := fmt.Fprintln(stdout(c), c.String("config"))
	return err
}

func configInit(c *cli.Context) error {
	path := c.String("config")
	if !c.Bool("force") {
		if _, err := os.Stat(path); err == nil {
			return cli.Exit(path+" already exists; use --force to overwrite", 1)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	if err := config.Save(config.Default(), path); err != nil {
		return err
	}
	_, err := fmt.Fprintf(stdout(c), "wrote %s\n", path)
	return err
}
