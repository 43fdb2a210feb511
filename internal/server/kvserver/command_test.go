package kvserver

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/stackkv-go/internal/core/domain"
	"github.com/yndnr/stackkv-go/internal/core/service"
	"github.com/yndnr/stackkv-go/internal/storage/memory"
	"github.com/yndnr/stackkv-go/internal/telemetry/metric"
)

func newTestProcessor(opts ...memory.Option) (*CommandProcessor, *metric.Registry) {
	reg := metric.NewRegistry()
	svc := service.NewTxService(memory.New(opts...), service.WithMetrics(reg))
	return NewCommandProcessor(svc, nil, reg), reg
}

func encode(t *testing.T, resp Response) string {
	t.Helper()
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

type step struct {
	sid  domain.SessionID
	line string
	want string
}

func runSteps(t *testing.T, p *CommandProcessor, steps []step) {
	t.Helper()
	ctx := context.Background()
	for i, s := range steps {
		sid := s.sid
		if sid == "" {
			sid = "kvss-a"
		}
		got := encode(t, p.Process(ctx, sid, s.line))
		if got != s.want {
			t.Fatalf("step %d %s %q = %s, want %s", i, sid, s.line, got, s.want)
		}
	}
}

const (
	wantOK          = `{"status":"Ok"}`
	wantBegan       = `{"status":"Ok","mesg":"Began new transactions"}`
	wantCommitted   = `{"status":"Ok","mesg":"Transaction committed"}`
	wantRolledBack  = `{"status":"Ok","mesg":"Transaction roll backed"}`
	wantNoCommit    = `{"status":"Error","mesg":"No transactions to commit"}`
	wantNoRollback  = `{"status":"Error","mesg":"No transactions to rollback"}`
	wantNotFound    = `{"status":"Error","mesg":"Key not found"}`
	wantInvalid     = `{"status":"Error","mesg":"Invalid command"}`
	wantSetFailed   = `{"status":"Error","mesg":"Failed to set value"}`
	wantSetFailedTx = `{"status":"Error","mesg":"Failed to set value, ending current transaction"}`
	wantNotFoundTx  = `{"status":"Error","mesg":"Key not found, ending current transaction"}`
)

func result(v string) string {
	return `{"status":"Ok","result":"` + v + `"}`
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line    string
		verb    Verb
		args    []string
		invalid bool
	}{
		{line: "BEGIN", verb: VerbBegin},
		{line: "start", verb: VerbBegin},
		{line: "  Commit  ", verb: VerbCommit},
		{line: "rollback", verb: VerbRollback},
		{line: "GET key", verb: VerbGet, args: []string{"key"}},
		{line: "put Key Value", verb: VerbPut, args: []string{"Key", "Value"}},
		{line: "DELETE\tk", verb: VerbDelete, args: []string{"k"}},
		{line: "", invalid: true},
		{line: "   ", invalid: true},
		{line: "FLUSH", invalid: true},
		{line: "BEGIN now", invalid: true},
		{line: "GET", invalid: true},
		{line: "GET a b", invalid: true},
		{line: "PUT a", invalid: true},
		{line: "PUT a b c", invalid: true},
		{line: "DELETE", invalid: true},
		{line: "END", invalid: true},
		{line: "PUT k \xff\xfe", invalid: true},
		{line: "GET \xc3", invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, err := ParseCommand(tt.line)
			if tt.invalid {
				if !errors.Is(err, domain.ErrInvalidCommand) {
					t.Fatalf("ParseCommand(%q) error = %v, want ErrInvalidCommand", tt.line, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCommand(%q) error = %v", tt.line, err)
			}
			if cmd.Verb != tt.verb {
				t.Errorf("Verb = %s, want %s", cmd.Verb, tt.verb)
			}
			if len(cmd.Args) != len(tt.args) {
				t.Fatalf("Args = %v, want %v", cmd.Args, tt.args)
			}
			for i := range tt.args {
				if cmd.Args[i] != tt.args[i] {
					t.Errorf("Args[%d] = %q, want %q", i, cmd.Args[i], tt.args[i])
				}
			}
		})
	}
}

func TestVerbs(t *testing.T) {
	got := Verbs()
	sort.Strings(got)
	want := []string{"BEGIN", "COMMIT", "DELETE", "END", "GET", "PUT", "ROLLBACK", "START"}
	if len(got) != len(want) {
		t.Fatalf("Verbs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Verbs() = %v, want %v", got, want)
		}
	}
}

func TestProcess_Basic(t *testing.T) {
	p, _ := newTestProcessor()
	runSteps(t, p, []step{
		{line: "GET a", want: wantNotFound},
		{line: "PUT a 1", want: wantOK},
		{line: "GET a", want: result("1")},
		{line: "PUT a 2", want: wantOK},
		{line: "get a", want: result("2")},
		{line: "DELETE a", want: wantOK},
		{line: "GET a", want: wantNotFound},
		{line: "DELETE a", want: wantNotFound},
		{line: "COMMIT", want: wantNoCommit},
		{line: "ROLLBACK", want: wantNoRollback},
		{line: "HELLO", want: wantInvalid},
		{line: "", want: wantInvalid},
		{line: "PUT a", want: wantInvalid},
	})
}

func TestProcess_Transactions(t *testing.T) {
	p, _ := newTestProcessor()
	runSteps(t, p, []step{
		{line: "PUT a 1", want: wantOK},
		{line: "BEGIN", want: wantBegan},
		{line: "PUT a 2", want: wantOK},
		{line: "GET a", want: result("2")},
		{sid: "kvss-b", line: "GET a", want: result("1")},
		{line: "START", want: wantBegan},
		{line: "PUT b 3", want: wantOK},
		{line: "ROLLBACK", want: wantRolledBack},
		{line: "GET b", want: wantNotFound},
		{line: "GET a", want: result("2")},
		{line: "COMMIT", want: wantCommitted},
		{line: "COMMIT", want: wantNoCommit},
		{sid: "kvss-b", line: "GET a", want: result("2")},
	})
}

func TestProcess_DeleteCompensation(t *testing.T) {
	p, reg := newTestProcessor()
	runSteps(t, p, []step{
		{line: "PUT base 0", want: wantOK},
		{line: "BEGIN", want: wantBegan},
		{line: "PUT x 1", want: wantOK},
		{line: "BEGIN", want: wantBegan},
		{line: "PUT y 2", want: wantOK},
		// Miss inside the inner transaction ends it.
		{line: "DELETE nope", want: wantNotFoundTx},
		{line: "GET y", want: wantNotFound},
		{line: "GET x", want: result("1")},
		// A miss in the outermost transaction ends it too and still carries
		// the suffix although no transaction remains.
		{line: "DELETE nope", want: wantNotFoundTx},
		{line: "GET x", want: wantNotFound},
		{line: "ROLLBACK", want: wantNoRollback},
		// No transaction left: a miss changes nothing.
		{line: "DELETE nope", want: wantNotFound},
		{line: "GET base", want: result("0")},
	})

	if got := testutil.ToFloat64(reg.CompensatingRollbacks); got != 2 {
		t.Errorf("compensating_rollbacks_total = %v, want 2", got)
	}
}

func TestProcess_PutCompensation(t *testing.T) {
	p, _ := newTestProcessor(memory.WithMaxValueSize(4))
	runSteps(t, p, []step{
		{line: "PUT big 12345", want: wantSetFailed},
		{line: "GET big", want: wantNotFound},
		{line: "BEGIN", want: wantBegan},
		{line: "PUT a 1", want: wantOK},
		{line: "PUT big 12345", want: wantSetFailedTx},
		{line: "GET a", want: wantNotFound},
		{line: "COMMIT", want: wantNoCommit},
	})
}

func TestProcess_Metrics(t *testing.T) {
	p, reg := newTestProcessor()
	runSteps(t, p, []step{
		{line: "PUT a 1", want: wantOK},
		{line: "GET a", want: result("1")},
		{line: "GET b", want: wantNotFound},
		{line: "NOPE", want: wantInvalid},
	})

	tests := []struct {
		verb, status string
		want         float64
	}{
		{"PUT", StatusOK, 1},
		{"GET", StatusOK, 1},
		{"GET", StatusError, 1},
		{"INVALID", StatusError, 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(reg.CommandsTotal.WithLabelValues(tt.verb, tt.status)); got != tt.want {
			t.Errorf("commands_total{%s,%s} = %v, want %v", tt.verb, tt.status, got, tt.want)
		}
	}
}

func TestEndedTransaction(t *testing.T) {
	tests := []struct {
		resp Response
		want bool
	}{
		{errorResponse(msgKeyNotFound + msgEndingCurrentTxn), true},
		{errorResponse(msgSetFailed + msgEndingCurrentTxn), true},
		{errorResponse(msgKeyNotFound), false},
		{okResponse(msgCommitted), false},
	}
	for _, tt := range tests {
		if got := EndedTransaction(tt.resp); got != tt.want {
			t.Errorf("EndedTransaction(%+v) = %v, want %v", tt.resp, got, tt.want)
		}
	}
}
