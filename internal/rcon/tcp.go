package rcon

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"
)

// TCPClient implements Client over a Source-RCON TCP session.
//
// A session serializes commands: the protocol matches responses to
// requests by ID over a single stream, so Execute holds the session
// lock for the full round trip.
type TCPClient struct {
	mu        sync.Mutex
	conn      net.Conn
	addr      string
	password  string
	connected bool
	nextID    int32
}

var _ Client = (*TCPClient)(nil)

// Dial establishes and authenticates an RCON session.
func Dial(cfg DialConfig) (*TCPClient, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("rcon dial: address is required")
	}

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	conn, err := net.DialTimeout("tcp", cfg.Addr, timeout)
	if err != nil {
		return nil, NormalizeError(fmt.Errorf("rcon dial %s: %w", cfg.Addr, err))
	}

	c := &TCPClient{
		conn:     conn,
		addr:     cfg.Addr,
		password: cfg.Password,
		nextID:   1,
	}

	if err := c.authenticate(timeout); err != nil {
		_ = conn.Close()
		return nil, err
	}

	c.connected = true
	return c, nil
}

// authenticate performs the auth handshake. The server answers an auth
// request with ID -1 on a bad password.
func (c *TCPClient) authenticate(timeout time.Duration) error {
	id := c.nextID
	c.nextID++

	_ = c.conn.SetDeadline(time.Now().Add(timeout))
	defer func() { _ = c.conn.SetDeadline(time.Time{}) }()

	if _, err := c.conn.Write(encodePacket(packet{ID: id, Type: packetTypeAuth, Body: c.password})); err != nil {
		return NormalizeError(fmt.Errorf("rcon auth write: %w", err))
	}

	// Some servers send an empty RESPONSE_VALUE before the auth
	// response; skip packets until the auth response arrives.
	for {
		resp, err := decodePacket(c.conn)
		if err != nil {
			return NormalizeError(fmt.Errorf("rcon auth read: %w", err))
		}
		if resp.Type != packetTypeAuthResponse {
			continue
		}
		if resp.ID == -1 {
			return &RemoteError{Cause: ErrAuthFailed, Original: fmt.Errorf("authentication failed for %s", c.addr)}
		}
		if resp.ID != id {
			return &RemoteError{Cause: ErrProtocol, Original: fmt.Errorf("mismatched request id %d in auth response", resp.ID)}
		}
		return nil
	}
}

// Execute sends a console command and returns the raw response text.
func (c *TCPClient) Execute(ctx context.Context, command string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected || c.conn == nil {
		return "", &RemoteError{Cause: ErrClosed, Original: fmt.Errorf("session to %s is not connected", c.addr)}
	}

	// Propagate the context deadline onto the socket.
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetDeadline(deadline)
		defer func() {
			if c.conn != nil {
				_ = c.conn.SetDeadline(time.Time{})
			}
		}()
	}

	id := c.nextID
	c.nextID++

	if _, err := c.conn.Write(encodePacket(packet{ID: id, Type: packetTypeExecCommand, Body: command})); err != nil {
		c.markDown()
		return "", NormalizeError(fmt.Errorf("rcon write: %w", err))
	}

	resp, err := decodePacket(c.conn)
	if err != nil {
		c.markDown()
		return "", NormalizeError(fmt.Errorf("rcon read: %w", err))
	}
	if resp.ID != id {
		c.markDown()
		return "", &RemoteError{Cause: ErrProtocol, Original: fmt.Errorf("mismatched request id %d, want %d", resp.ID, id)}
	}

	return resp.Body, nil
}

// Connected reports whether the session is currently usable.
func (c *TCPClient) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Close tears down the session.
func (c *TCPClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.connected = false
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// markDown flags the session unusable after an I/O failure. The caller
// holds c.mu.
func (c *TCPClient) markDown() {
	c.connected = false
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}
