// Package fake provides a scriptable rcon.Client for testing.
package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/rcon-bridge/rcb/internal/rcon"
)

// Client implements rcon.Client with scripted responses.
type Client struct {
	mu sync.Mutex

	// Responses maps a command string to its canned response text.
	Responses map[string]string

	// DefaultResponse is returned for commands without a scripted entry.
	DefaultResponse string

	// ExecuteErr, when set, is returned by every Execute call.
	ExecuteErr error

	// Down marks the session as disconnected.
	Down bool

	// Executed records every command passed to Execute, in order.
	Executed []string
}

var _ rcon.Client = (*Client)(nil)

// NewClient creates a connected fake with no scripted responses.
func NewClient() *Client {
	return &Client{Responses: make(map[string]string)}
}

// Script sets the canned response for a command.
func (c *Client) Script(command, response string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Responses == nil {
		c.Responses = make(map[string]string)
	}
	c.Responses[command] = response
}

// Execute records the command and returns the scripted response.
func (c *Client) Execute(ctx context.Context, command string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Executed = append(c.Executed, command)

	if err := ctx.Err(); err != nil {
		return "", rcon.NormalizeError(err)
	}
	if c.ExecuteErr != nil {
		return "", c.ExecuteErr
	}
	if resp, ok := c.Responses[command]; ok {
		return resp, nil
	}
	if c.DefaultResponse != "" {
		return c.DefaultResponse, nil
	}
	return fmt.Sprintf("Executed: %s", command), nil
}

// Connected reports the scripted connectivity state.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.Down
}

// Close marks the fake as disconnected.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Down = true
	return nil
}

// ExecuteCount returns the number of Execute calls seen.
func (c *Client) ExecuteCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Executed)
}
