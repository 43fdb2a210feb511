package connection

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/yndnr/stackkv-go/internal/core/service"
	"github.com/yndnr/stackkv-go/internal/server/kvserver"
	"github.com/yndnr/stackkv-go/internal/storage/memory"
)

// startServer runs a real protocol server on a loopback port.
func startServer(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	svc := service.NewTxService(memory.New())
	srv := kvserver.New(kvserver.DefaultConfig(), svc, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, ln)
	}()

	t.Cleanup(func() {
		cancel()
		sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer scancel()
		_ = srv.Shutdown(sctx)
		<-done
	})
	return ln.Addr().String()
}

func dial(t *testing.T, addr string) *Client {
	t.Helper()
	c := NewClient(addr, WithTimeout(2*time.Second))
	if err := c.Dial(context.Background()); err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClient_Send(t *testing.T) {
	addr := startServer(t)
	c := dial(t, addr)

	steps := []struct {
		line       string
		wantStatus string
		wantResult string
	}{
		{"PUT a 1", kvserver.StatusOK, ""},
		{"GET a", kvserver.StatusOK, "1"},
		{"BEGIN", kvserver.StatusOK, ""},
		{"PUT a 2", kvserver.StatusOK, ""},
		{"ROLLBACK", kvserver.StatusOK, ""},
		{"GET a", kvserver.StatusOK, "1"},
		{"NOPE", kvserver.StatusError, ""},
	}

	for _, st := range steps {
		resp, err := c.Send(st.line)
		if err != nil {
			t.Fatalf("Send(%q) error = %v", st.line, err)
		}
		if resp.Status != st.wantStatus {
			t.Errorf("Send(%q) status = %q, want %q", st.line, resp.Status, st.wantStatus)
		}
		if st.wantResult != "" && (resp.Result == nil || *resp.Result != st.wantResult) {
			t.Errorf("Send(%q) result = %v, want %q", st.line, resp.Result, st.wantResult)
		}
	}
}

func TestClient_End(t *testing.T) {
	addr := startServer(t)
	c := dial(t, addr)

	resp, err := c.Send("END")
	if err != nil {
		t.Fatalf("Send(END) error = %v", err)
	}
	if resp.Mesg != "Closing connection" {
		t.Errorf("Mesg = %q", resp.Mesg)
	}
	if c.Connected() {
		t.Error("client should be closed after END")
	}
	if _, err := c.Send("GET a"); !errors.Is(err, ErrClosed) {
		t.Errorf("Send after END error = %v, want ErrClosed", err)
	}
}

func TestClient_SessionsAreIsolated(t *testing.T) {
	addr := startServer(t)
	a := dial(t, addr)
	b := dial(t, addr)

	mustSend := func(c *Client, line string) kvserver.Response {
		t.Helper()
		resp, err := c.Send(line)
		if err != nil {
			t.Fatalf("Send(%q) error = %v", line, err)
		}
		return resp
	}

	mustSend(a, "BEGIN")
	mustSend(a, "PUT k secret")
	if resp := mustSend(b, "GET k"); resp.OK() {
		t.Errorf("uncommitted write visible to other session: %+v", resp)
	}
	mustSend(a, "COMMIT")
	if resp := mustSend(b, "GET k"); !resp.OK() || *resp.Result != "secret" {
		t.Errorf("committed write not visible: %+v", resp)
	}
}

func TestClient_RejectsMultiline(t *testing.T) {
	addr := startServer(t)
	c := dial(t, addr)

	if _, err := c.Send("PUT a 1\nDELETE a"); err == nil {
		t.Error("expected error for embedded newline")
	}
	// Trailing newline is fine.
	if _, err := c.Send("PUT a 1\n"); err != nil {
		t.Errorf("Send with trailing newline error = %v", err)
	}
}

func TestClient_DialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	c := NewClient(addr, WithTimeout(500*time.Millisecond))
	if err := c.Dial(context.Background()); err == nil {
		t.Error("expected dial error")
	}
	if _, err := c.Send("GET a"); !errors.Is(err, ErrClosed) {
		t.Errorf("Send without connection error = %v, want ErrClosed", err)
	}
}

func TestClient_ServerHangup(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		conn.Close()
	}()

	c := dial(t, ln.Addr().String())
	if _, err := c.Send("GET a"); err == nil {
		t.Error("expected error when server hangs up")
	}
	if c.Connected() {
		t.Error("client should drop the connection after an I/O error")
	}
}
