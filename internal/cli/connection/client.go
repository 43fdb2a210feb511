package connection

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/yndnr/stackkv-go/internal/server/kvserver"
)

// ErrClosed is returned by Send after the connection has been closed,
// either locally or by an END exchange.
var ErrClosed = errors.New("connection closed")

// DefaultTimeout bounds a single request/response exchange.
const DefaultTimeout = 10 * time.Second

// Client speaks the line protocol over one connection. The server binds
// one session to the connection, so transactions opened through a
// Client stay open until COMMIT, ROLLBACK or Close.
//
// A Client is not safe for concurrent use.
type Client struct {
	network string
	addr    string
	timeout time.Duration

	conn net.Conn
	br   *bufio.Reader
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithNetwork sets the dial network ("tcp" or "unix").
func WithNetwork(network string) ClientOption {
	return func(c *Client) {
		c.network = network
	}
}

// WithTimeout sets the per-exchange timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient creates an unconnected client for addr.
func NewClient(addr string, opts ...ClientOption) *Client {
	c := &Client{
		network: "tcp",
		addr:    addr,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dial connects to the server.
func (c *Client) Dial(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, c.network, c.addr)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", c.addr, err)
	}
	c.attach(conn)
	return nil
}

func (c *Client) attach(conn net.Conn) {
	c.conn = conn
	c.br = bufio.NewReader(conn)
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Connected reports whether the client holds an open connection.
func (c *Client) Connected() bool {
	return c.conn != nil
}

// Send writes one command line and reads its response. An END command
// closes the connection after the server acknowledges it.
func (c *Client) Send(line string) (kvserver.Response, error) {
	if c.conn == nil {
		return kvserver.Response{}, ErrClosed
	}
	line = strings.TrimRight(line, "\r\n")
	if strings.ContainsAny(line, "\r\n") {
		return kvserver.Response{}, fmt.Errorf("command must be a single line")
	}

	if c.timeout > 0 {
		_ = c.conn.SetDeadline(time.Now().Add(c.timeout))
	}

	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		c.Close()
		return kvserver.Response{}, fmt.Errorf("send: %w", err)
	}

	raw, err := c.br.ReadBytes('\n')
	if err != nil {
		c.Close()
		return kvserver.Response{}, fmt.Errorf("receive: %w", err)
	}

	resp, err := kvserver.DecodeResponse(raw)
	if err != nil {
		return kvserver.Response{}, err
	}

	if line == kvserver.EndCommand {
		c.Close()
	}
	return resp, nil
}

// Close closes the connection. The server rolls back any transactions
// the session still has open.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.br = nil
	return err
}
