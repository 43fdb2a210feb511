package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/stackkv-go/internal/cli/connection"
	"github.com/yndnr/stackkv-go/internal/server/httpserver/handler"
)

// StatsCommand returns the stats subcommand.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show server statistics from the admin endpoint",
		Action: statsAction,
	}
}

// HealthCommand returns the health subcommand.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check server liveness and readiness",
		Action: healthAction,
	}
}

func adminClient(c *cli.Context) *connection.HTTPClient {
	cfg := Settings(c)
	return connection.NewHTTPClient(cfg.Admin, cfg.Timeout)
}

func statsAction(c *cli.Context) error {
	client := adminClient(c)

	ctx, cancel := context.WithTimeout(context.Background(), Settings(c).Timeout)
	defer cancel()

	var stats handler.StatsResponse
	if err := client.Get(ctx, "/stats", &stats); err != nil {
		return fmt.Errorf("stats from %s: %w", client.BaseURL(), err)
	}
	return formatter(Settings(c)).Format(stdout(c), stats)
}

// healthReport is printed by the health subcommand.
type healthReport struct {
	Target string `json:"target"`
	Live   bool   `json:"live"`
	Ready  bool   `json:"ready"`
	Error  string `json:"error,omitempty"`
}

func healthAction(c *cli.Context) error {
	client := adminClient(c)

	ctx, cancel := context.WithTimeout(context.Background(), Settings(c).Timeout)
	defer cancel()

	report := healthReport{Target: client.BaseURL()}
	if err := client.Get(ctx, "/health", nil); err != nil {
		report.Error = err.Error()
	} else {
		report.Live = true
		if err := client.Get(ctx, "/ready", nil); err != nil {
			report.Error = err.Error()
		} else {
			report.Ready = true
		}
	}

	if err := formatter(Settings(c)).Format(stdout(c), report); err != nil {
		return err
	}
	if !report.Ready {
		return cli.Exit("", 1)
	}
	return nil
}
