package kvserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/netutil"
	"golang.org/x/time/rate"

	"github.com/yndnr/stackkv-go/internal/core/domain"
	"github.com/yndnr/stackkv-go/internal/core/service"
	"github.com/yndnr/stackkv-go/internal/telemetry/logger"
	"github.com/yndnr/stackkv-go/internal/telemetry/metric"
	"github.com/yndnr/stackkv-go/pkg/cmap"
)

// Default timeouts, used when the configured value is zero.
const (
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultIdleTimeout  = 5 * time.Minute
)

// ErrServerClosed is returned by Serve after Shutdown.
var ErrServerClosed = errors.New("kvserver: server closed")

// Config holds the line protocol server configuration.
type Config struct {
	// Network is "tcp" or "unix".
	Network string
	// Addr is the listen address, or the socket path for "unix".
	Addr string
	// MaxFrameSize bounds the length of one command line.
	MaxFrameSize int
	// MaxConnections bounds concurrently served connections; 0 means unbounded.
	MaxConnections int
	// ReadTimeout bounds reading the rest of a frame once its first byte arrived.
	ReadTimeout time.Duration
	// WriteTimeout bounds writing one response.
	WriteTimeout time.Duration
	// IdleTimeout bounds the wait for the next frame.
	IdleTimeout time.Duration
	// RateLimit is the maximum number of commands per second per
	// connection; 0 disables rate limiting.
	RateLimit int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Network:      "tcp",
		Addr:         "127.0.0.1:8893",
		MaxFrameSize: DefaultMaxFrameSize,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
	}
}

func (c *Config) readTimeout() time.Duration {
	if c.ReadTimeout > 0 {
		return c.ReadTimeout
	}
	return DefaultReadTimeout
}

func (c *Config) writeTimeout() time.Duration {
	if c.WriteTimeout > 0 {
		return c.WriteTimeout
	}
	return DefaultWriteTimeout
}

func (c *Config) idleTimeout() time.Duration {
	if c.IdleTimeout > 0 {
		return c.IdleTimeout
	}
	return DefaultIdleTimeout
}

// Server accepts client connections and serves the line protocol.
type Server struct {
	cfg     *Config
	svc     *service.TxService
	proc    *CommandProcessor
	logger  *slog.Logger
	metrics *metric.Registry

	mu      sync.Mutex
	ln      net.Listener
	running atomic.Bool
	closed  atomic.Bool
	wg      sync.WaitGroup
	conns   *cmap.Map[domain.SessionID, *Conn]
}

// Conn is one client connection and its session.
type Conn struct {
	netConn net.Conn
	br      *bufio.Reader
	bw      *bufio.Writer
	sid     domain.SessionID
	limiter *rate.Limiter
	created time.Time

	closed atomic.Bool
}

func newConn(c net.Conn, sid domain.SessionID, rateLimit int) *Conn {
	conn := &Conn{
		netConn: c,
		br:      bufio.NewReader(c),
		bw:      bufio.NewWriter(c),
		sid:     sid,
		created: time.Now(),
	}
	if rateLimit > 0 {
		conn.limiter = rate.NewLimiter(rate.Limit(rateLimit), rateLimit)
	}
	return conn
}

// Close closes the underlying connection. It is safe to call more than once.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// SessionID returns the session bound to this connection.
func (c *Conn) SessionID() domain.SessionID {
	return c.sid
}

// New creates a new server.
func New(cfg *Config, svc *service.TxService, logger *slog.Logger, metrics *metric.Registry) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		cfg:     cfg,
		svc:     svc,
		proc:    NewCommandProcessor(svc, logger, metrics),
		logger:  logger,
		metrics: metrics,
		conns:   cmap.New[domain.SessionID, *Conn](),
	}
}

// ListenAndServe binds the configured address and serves until Shutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	network := s.cfg.Network
	if network == "" {
		network = "tcp"
	}

	ln, err := net.Listen(network, s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s %s: %w", network, s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until Shutdown is called or ctx is done.
// It always returns a non-nil error; after Shutdown it is ErrServerClosed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConnections)
	}

	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.ln = ln
	s.running.Store(true)
	s.mu.Unlock()

	s.logger.Info("kv server listening",
		"network", ln.Addr().Network(),
		"addr", ln.Addr().String(),
		"max_connections", s.cfg.MaxConnections,
	)

	stop := context.AfterFunc(ctx, func() {
		ln.Close()
	})
	defer stop()
	defer s.running.Store(false)

	var tempDelay time.Duration
	for {
		c, err := ln.Accept()
		if err != nil {
			if s.closed.Load() {
				return ErrServerClosed
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return ErrServerClosed
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay = min(2*tempDelay, time.Second)
				}
				s.logger.Warn("accept error, retrying", "error", err, "delay", tempDelay)
				time.Sleep(tempDelay)
				continue
			}
			return err
		}
		tempDelay = 0

		if !s.track() {
			c.Close()
			return ErrServerClosed
		}
		conn, ok := s.open(ctx, c)
		if !ok {
			s.wg.Done()
			continue
		}
		go func() {
			defer s.wg.Done()
			s.serve(ctx, conn)
		}()
	}
}

// track counts a new handler unless Shutdown has started. The check and
// the Add happen under s.mu so they cannot interleave with Shutdown.
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return false
	}
	s.wg.Add(1)
	return true
}

// Addr returns the listener address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Running reports whether the server is accepting connections.
func (s *Server) Running() bool {
	return s.running.Load()
}

// ActiveConnections returns the number of connections being served.
func (s *Server) ActiveConnections() int {
	return s.conns.Count()
}

// Shutdown stops accepting connections, closes open connections and waits
// for their handlers to finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed.Store(true)
	s.running.Store(false)
	var err error
	if s.ln != nil {
		err = s.ln.Close()
		if errors.Is(err, net.ErrClosed) {
			err = nil
		}
	}
	s.mu.Unlock()

	for _, c := range s.conns.Values() {
		c.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("kv server stopped")
	return err
}

// handle serves one connection to completion.
func (s *Server) handle(ctx context.Context, nc net.Conn) {
	c, ok := s.open(ctx, nc)
	if !ok {
		return
	}
	s.serve(ctx, c)
}

// open creates the session for an accepted connection and registers it.
// A connection registered after Shutdown began is closed at once so its
// handler exits without waiting for the idle timeout.
func (s *Server) open(ctx context.Context, nc net.Conn) (*Conn, bool) {
	sid, err := s.svc.OpenSession(ctx)
	if err != nil {
		s.logger.Error("failed to open session", "remote", nc.RemoteAddr(), "error", err)
		nc.Close()
		return nil, false
	}

	c := newConn(nc, sid, s.cfg.RateLimit)
	s.conns.Set(sid, c)
	s.metrics.ConnOpened()
	if s.closed.Load() {
		c.Close()
	}
	return c, true
}

// serve runs the command loop and releases the session afterwards.
func (s *Server) serve(ctx context.Context, c *Conn) {
	sid := c.sid
	ctx = logger.WithLogger(ctx, logger.FromSlog(s.logger))
	ctx = logger.WithSessionID(ctx, sid.String())
	s.logger.Debug("connection opened", "session", sid.String(), "remote", c.RemoteAddr())

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in connection handler",
				"session", sid.String(),
				"panic", r,
			)
		}
		c.Close()
		s.conns.Delete(sid)
		s.metrics.ConnClosed()
		s.svc.CloseSession(ctx, sid)
		s.logger.Debug("connection closed",
			"session", sid.String(),
			"duration", time.Since(c.created),
		)
	}()

	s.serveConn(ctx, c)
}

func (s *Server) serveConn(ctx context.Context, c *Conn) {
	for {
		// Wait for the first byte under the idle timeout, then bound the
		// rest of the frame by the read timeout.
		if !s.armRead(c, s.cfg.idleTimeout()) {
			return
		}
		if _, err := c.br.Peek(1); err != nil {
			s.logReadError(c, err)
			return
		}
		if !s.armRead(c, s.cfg.readTimeout()) {
			return
		}

		line, err := ReadFrame(c.br, s.cfg.MaxFrameSize)
		if err != nil {
			if errors.Is(err, domain.ErrFrameTooLarge) {
				s.logger.Warn("command frame too large",
					"session", c.sid.String(),
					"remote", c.RemoteAddr(),
					"error", err,
				)
				s.metrics.RecordCommand("INVALID", StatusError, 0)
				if !s.reply(c, errorResponse(msgInvalidCommand)) {
					return
				}
				continue
			}
			s.logReadError(c, err)
			return
		}

		if line == EndCommand {
			s.reply(c, Response{Status: statusClosing, Mesg: msgClosing})
			return
		}

		var resp Response
		if c.limiter != nil && !c.limiter.Allow() {
			s.metrics.IncRateLimited()
			s.logger.Debug("rate limited", "session", c.sid.String(), "code", domain.ErrRateLimited.Code)
			resp = errorResponse(msgRateLimited)
		} else {
			resp = s.proc.Process(ctx, c.sid, line)
		}

		if !s.reply(c, resp) {
			return
		}
	}
}

// armRead sets the read deadline. A failure is tolerated while input is
// still buffered, so a final frame sent just before the peer closed is
// still executed.
func (s *Server) armRead(c *Conn, d time.Duration) bool {
	if err := c.netConn.SetReadDeadline(time.Now().Add(d)); err != nil {
		return c.br.Buffered() > 0
	}
	return true
}

// reply writes and flushes one response. It reports whether the
// connection is still usable.
func (s *Server) reply(c *Conn, resp Response) bool {
	if err := c.netConn.SetWriteDeadline(time.Now().Add(s.cfg.writeTimeout())); err != nil {
		return false
	}
	if err := WriteResponse(c.bw, resp); err != nil {
		s.logger.Debug("write error", "session", c.sid.String(), "error", err)
		return false
	}
	if err := c.bw.Flush(); err != nil {
		s.logger.Debug("flush error", "session", c.sid.String(), "error", err)
		return false
	}
	return true
}

func (s *Server) logReadError(c *Conn, err error) {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		s.logger.Debug("connection timed out", "session", c.sid.String(), "remote", c.RemoteAddr())
		return
	}
	s.logger.Debug("connection read error", "session", c.sid.String(), "remote", c.RemoteAddr(), "error", err)
}
