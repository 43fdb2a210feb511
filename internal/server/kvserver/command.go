package kvserver

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yndnr/stackkv-go/internal/core/domain"
	"github.com/yndnr/stackkv-go/internal/core/service"
	"github.com/yndnr/stackkv-go/internal/telemetry/metric"
)

// Verb is a normalized command name.
type Verb string

// Supported verbs.
const (
	VerbBegin    Verb = "BEGIN"
	VerbCommit   Verb = "COMMIT"
	VerbRollback Verb = "ROLLBACK"
	VerbGet      Verb = "GET"
	VerbPut      Verb = "PUT"
	VerbDelete   Verb = "DELETE"
)

// EndCommand closes the connection. It is matched exactly, before parsing.
const EndCommand = "END"

// Client-facing messages.
const (
	msgBegan            = "Began new transactions"
	msgCommitted        = "Transaction committed"
	msgNoCommit         = "No transactions to commit"
	msgRolledBack       = "Transaction roll backed"
	msgNoRollback       = "No transactions to rollback"
	msgKeyNotFound      = "Key not found"
	msgSetFailed        = "Failed to set value"
	msgInvalidCommand   = "Invalid command"
	msgRateLimited      = "Rate limit exceeded"
	msgInternal         = "Internal store error"
	msgClosing          = "Closing connection"
	msgEndingCurrentTxn = ", ending current transaction"
)

// arity is the number of arguments each verb takes, keyed by every
// accepted spelling.
var arity = map[string]struct {
	verb Verb
	args int
}{
	"BEGIN":    {VerbBegin, 0},
	"START":    {VerbBegin, 0},
	"COMMIT":   {VerbCommit, 0},
	"ROLLBACK": {VerbRollback, 0},
	"GET":      {VerbGet, 1},
	"PUT":      {VerbPut, 2},
	"DELETE":   {VerbDelete, 1},
}

// Verbs returns every accepted command spelling, END included.
func Verbs() []string {
	out := make([]string, 0, len(arity)+1)
	for name := range arity {
		out = append(out, name)
	}
	return append(out, EndCommand)
}

// EndedTransaction reports whether resp is a failure that also rolled
// back the session's innermost transaction.
func EndedTransaction(resp Response) bool {
	return !resp.OK() && strings.HasSuffix(resp.Mesg, msgEndingCurrentTxn)
}

// Command is a parsed client command.
type Command struct {
	Verb Verb
	Args []string
}

// ParseCommand splits a frame on whitespace and validates verb and arity.
// The verb is case-insensitive; arguments are kept verbatim. Frames must
// be valid UTF-8 since replies are JSON strings.
func ParseCommand(line string) (Command, error) {
	if !utf8.ValidString(line) {
		return Command{}, domain.ErrInvalidCommand.WithDetails("frame is not valid UTF-8")
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, domain.ErrInvalidCommand.WithDetails("empty command")
	}

	spec, ok := arity[strings.ToUpper(fields[0])]
	if !ok {
		return Command{}, domain.ErrInvalidCommand.WithDetails("unknown verb")
	}
	if len(fields)-1 != spec.args {
		return Command{}, domain.ErrInvalidCommand.WithDetails("wrong number of arguments for " + string(spec.verb))
	}

	return Command{Verb: spec.verb, Args: fields[1:]}, nil
}

// CommandProcessor executes client commands against a TxService and maps
// the outcome to a Response.
type CommandProcessor struct {
	svc     *service.TxService
	logger  *slog.Logger
	metrics *metric.Registry
}

// NewCommandProcessor creates a new CommandProcessor.
func NewCommandProcessor(svc *service.TxService, logger *slog.Logger, metrics *metric.Registry) *CommandProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandProcessor{
		svc:     svc,
		logger:  logger,
		metrics: metrics,
	}
}

// Process parses and executes one frame for the session.
func (p *CommandProcessor) Process(ctx context.Context, sid domain.SessionID, line string) Response {
	start := time.Now()

	cmd, err := ParseCommand(line)
	if err != nil {
		p.logger.Debug("invalid command", "session", sid.String(), "error", err)
		p.metrics.RecordCommand("INVALID", StatusError, time.Since(start).Seconds())
		return errorResponse(msgInvalidCommand)
	}

	resp := p.Execute(ctx, sid, cmd)
	p.metrics.RecordCommand(string(cmd.Verb), resp.Status, time.Since(start).Seconds())
	return resp
}

// Execute runs a parsed command for the session.
func (p *CommandProcessor) Execute(ctx context.Context, sid domain.SessionID, cmd Command) Response {
	switch cmd.Verb {
	case VerbBegin:
		if _, err := p.svc.Begin(ctx, sid); err != nil {
			return p.failure(sid, cmd, err)
		}
		return okResponse(msgBegan)

	case VerbCommit:
		if _, err := p.svc.Commit(ctx, sid); err != nil {
			if errors.Is(err, domain.ErrNoActiveTransaction) {
				return errorResponse(msgNoCommit)
			}
			return p.failure(sid, cmd, err)
		}
		return okResponse(msgCommitted)

	case VerbRollback:
		if _, err := p.svc.Rollback(ctx, sid); err != nil {
			if errors.Is(err, domain.ErrNoActiveTransaction) {
				return errorResponse(msgNoRollback)
			}
			return p.failure(sid, cmd, err)
		}
		return okResponse(msgRolledBack)

	case VerbGet:
		v, err := p.svc.Get(ctx, sid, cmd.Args[0])
		if err != nil {
			if errors.Is(err, domain.ErrKeyNotFound) {
				return errorResponse(msgKeyNotFound)
			}
			return p.failure(sid, cmd, err)
		}
		return resultResponse(v)

	case VerbPut:
		if err := p.svc.Put(ctx, sid, cmd.Args[0], cmd.Args[1]); err != nil {
			if errors.Is(err, domain.ErrInternalStore) {
				return p.compensate(ctx, sid, msgSetFailed)
			}
			return p.failure(sid, cmd, err)
		}
		return okResponse("")

	case VerbDelete:
		if err := p.svc.Delete(ctx, sid, cmd.Args[0]); err != nil {
			if errors.Is(err, domain.ErrKeyNotFound) {
				return p.compensate(ctx, sid, msgKeyNotFound)
			}
			return p.failure(sid, cmd, err)
		}
		return okResponse("")
	}

	return errorResponse(msgInvalidCommand)
}

// compensate rolls back the innermost transaction after a failed write
// and reports mesg, noting when a transaction was ended.
func (p *CommandProcessor) compensate(ctx context.Context, sid domain.SessionID, mesg string) Response {
	if p.svc.Abort(ctx, sid) {
		return errorResponse(mesg + msgEndingCurrentTxn)
	}
	return errorResponse(mesg)
}

func (p *CommandProcessor) failure(sid domain.SessionID, cmd Command, err error) Response {
	p.logger.Error("command failed",
		"session", sid.String(),
		"verb", string(cmd.Verb),
		"code", domain.GetErrorCode(err),
		"error", err,
	)
	if cmd.Verb == VerbPut {
		return errorResponse(msgSetFailed)
	}
	return errorResponse(msgInternal)
}
