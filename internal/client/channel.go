// internal/client/channel.go
package client

import (
	"errors"
	"sync"

	"github.com/pokerplan/pokerplan/internal/protocol"
)

// Send failure kinds. A send failure is never fatal to the operation that
// triggered it; callers log it and move on.
var (
	// ErrChannelClosed means the receiving session has shut down.
	ErrChannelClosed = errors.New("client channel closed")
	// ErrChannelFull means the session's outbound mailbox is backpressured.
	ErrChannelFull = errors.New("client channel full")
)

// Channel delivers outbound events to one connection.
type Channel interface {
	// Send attempts delivery. The returned error should be logged and
	// otherwise ignored; a failed send to one recipient must not abort the
	// operation that produced the event.
	Send(ev protocol.Event) error

	// TrySend is the same delivery attempt for callers that want to tell a
	// backpressured channel (ErrChannelFull) apart from a closed one
	// (ErrChannelClosed).
	TrySend(ev protocol.Event) error
}

// ChanChannel is the default Channel, backed by the owning session's bounded
// outbound mailbox. Neither send path ever blocks the caller.
type ChanChannel struct {
	out chan protocol.Event

	mu     sync.Mutex
	closed bool
}

// NewChanChannel wraps a mailbox of the given capacity.
func NewChanChannel(capacity int) *ChanChannel {
	return &ChanChannel{out: make(chan protocol.Event, capacity)}
}

// Out exposes the receive side of the mailbox for the session's write pump.
func (c *ChanChannel) Out() <-chan protocol.Event {
	return c.out
}

// Close marks the channel closed. Subsequent sends fail with
// ErrChannelClosed. Safe to call more than once.
func (c *ChanChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.out)
}

func (c *ChanChannel) Send(ev protocol.Event) error {
	return c.TrySend(ev)
}

func (c *ChanChannel) TrySend(ev protocol.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrChannelClosed
	}
	select {
	case c.out <- ev:
		return nil
	default:
		return ErrChannelFull
	}
}
