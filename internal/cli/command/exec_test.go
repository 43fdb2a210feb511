package command

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExec_SingleCommand(t *testing.T) {
	addr, svc := startKV(t)

	res := runApp(t, "-s", addr, "exec", "PUT", "greeting", "hello")
	if res.err != nil {
		t.Fatalf("exec error = %v", res.err)
	}
	if strings.TrimSpace(res.stdout) != "OK" {
		t.Errorf("stdout = %q, want OK", res.stdout)
	}

	v, err := svc.Get(context.Background(), "kvss-observer", "greeting")
	if err != nil || v != "hello" {
		t.Errorf("stored value = %q, %v", v, err)
	}

	res = runApp(t, "-s", addr, "-o", "json", "exec", "GET", "greeting")
	if !strings.Contains(res.stdout, `"result": "hello"`) {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestExec_Script(t *testing.T) {
	addr, svc := startKV(t)

	script := filepath.Join(t.TempDir(), "cmds.txt")
	content := strings.Join([]string{
		"# seed",
		"PUT a 1",
		"",
		"BEGIN",
		"PUT a 2",
		"GET a",
		"COMMIT",
		"GET a",
	}, "\n")
	if err := os.WriteFile(script, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	res := runApp(t, "-s", addr, "exec", "-f", script)
	if res.err != nil {
		t.Fatalf("exec error = %v", res.err)
	}

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	want := []string{"OK", "Began new transactions", "OK", `"2"`, "Transaction committed", `"2"`}
	if len(lines) != len(want) {
		t.Fatalf("lines = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}

	if v, _ := svc.Get(context.Background(), "kvss-observer", "a"); v != "2" {
		t.Errorf("a = %q after commit, want 2", v)
	}
}

func TestExec_Strict(t *testing.T) {
	addr, _ := startKV(t)

	script := filepath.Join(t.TempDir(), "cmds.txt")
	if err := os.WriteFile(script, []byte("GET missing\nPUT after 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	res := runApp(t, "-s", addr, "exec", "--strict", "-f", script)
	if res.exitCode != ExitCommandFailed {
		t.Errorf("exit code = %d, want %d", res.exitCode, ExitCommandFailed)
	}
	if strings.Contains(res.stdout, "OK") {
		t.Errorf("strict mode should stop before PUT: %q", res.stdout)
	}

	res = runApp(t, "-s", addr, "exec", "-f", script)
	if res.err != nil {
		t.Errorf("non-strict exec error = %v", res.err)
	}
	if !strings.Contains(res.stdout, "(error) Key not found") {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestExec_EndStopsScript(t *testing.T) {
	addr, _ := startKV(t)

	script := filepath.Join(t.TempDir(), "cmds.txt")
	if err := os.WriteFile(script, []byte("END\nPUT a 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	res := runApp(t, "-s", addr, "exec", "-f", script)
	if res.err != nil {
		t.Fatalf("exec error = %v", res.err)
	}
	if strings.TrimSpace(res.stdout) != "Closing connection" {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestExec_NothingToSend(t *testing.T) {
	res := runApp(t, "exec")
	if res.exitCode != 1 {
		t.Errorf("exit code = %d, want 1", res.exitCode)
	}
}

func TestExec_ConnectFailure(t *testing.T) {
	res := runApp(t, "-s", "127.0.0.1:1", "--timeout", "500ms", "exec", "GET", "a")
	if res.err == nil {
		t.Error("expected connection error")
	}
}

func TestReadScript(t *testing.T) {
	lines, err := readScript(strings.NewReader("  PUT a 1  \n# note\n\r\nGET a"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(lines, "|") != "PUT a 1|GET a" {
		t.Errorf("lines = %q", lines)
	}
}
