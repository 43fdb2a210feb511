package command

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/stackkv-go/internal/cli/config"
	"github.com/yndnr/stackkv-go/internal/core/service"
	"github.com/yndnr/stackkv-go/internal/server/kvserver"
	"github.com/yndnr/stackkv-go/internal/storage/memory"
)

// startKV runs a protocol server on a loopback port and returns its
// address and the service behind it.
func startKV(t *testing.T) (string, *service.TxService) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	svc := service.NewTxService(memory.New())
	srv := kvserver.New(kvserver.DefaultConfig(), svc, nil, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(context.Background(), ln)
	}()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		<-done
	})
	return ln.Addr().String(), svc
}

type runResult struct {
	stdout   string
	stderr   string
	err      error
	exitCode int
}

// runApp runs the CLI with a private config file and captured output.
func runApp(t *testing.T, args ...string) runResult {
	t.Helper()

	for _, k := range []string{config.EnvServer, config.EnvNetwork, config.EnvAdmin, config.EnvOutput, config.EnvTimeout, config.EnvProfile} {
		t.Setenv(k, "")
	}

	exitCode := 0
	oldExiter := cli.OsExiter
	cli.OsExiter = func(code int) { exitCode = code }
	t.Cleanup(func() { cli.OsExiter = oldExiter })

	var stdout, stderr bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &stderr

	full := []string{"stackkv-cli"}
	if !hasFlag(args, "--config") {
		full = append(full, "--config", filepath.Join(t.TempDir(), "cli.yaml"))
	}
	full = append(full, args...)

	err := app.Run(full)
	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err, exitCode: exitCode}
}

func hasFlag(args []string, name string) bool {
	for _, a := range args {
		if a == name {
			return true
		}
	}
	return false
}
