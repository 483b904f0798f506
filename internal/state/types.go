package state

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrNotFound = errors.New("conversation not found")

// Frame is one suspended dialog on a conversation's stack: which dialog,
// which step it is paused on, and that dialog instance's slot values.
// Slots stay opaque here; each dialog decodes them into its own type.
type Frame struct {
	Dialog string          `json:"dialog"`
	Step   int             `json:"step"`
	Slots  json.RawMessage `json:"slots,omitempty"`
}

// Conversation is the persistent per-conversation dialog state.
type Conversation struct {
	ID             string    `json:"id"`
	Stack          []Frame   `json:"stack"`
	RestartMessage string    `json:"restart_message,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Top returns the active frame, or nil when the conversation is idle.
func (c *Conversation) Top() *Frame {
	if len(c.Stack) == 0 {
		return nil
	}
	return &c.Stack[len(c.Stack)-1]
}

// Push makes f the active frame.
func (c *Conversation) Push(f Frame) {
	c.Stack = append(c.Stack, f)
}

// Pop removes and returns the active frame.
func (c *Conversation) Pop() (Frame, bool) {
	if len(c.Stack) == 0 {
		return Frame{}, false
	}
	f := c.Stack[len(c.Stack)-1]
	c.Stack = c.Stack[:len(c.Stack)-1]
	return f, true
}

// Store persists and restores conversation dialog state between turns.
type Store interface {
	Load(ctx context.Context, conversationID string) (*Conversation, error)
	Save(ctx context.Context, conv *Conversation) error
	Close() error
}
