// internal/client/channel_test.go
package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokerplan/pokerplan/internal/protocol"
)

func TestChanChannelDeliversToMailbox(t *testing.T) {
	c := NewChanChannel(2)

	require.NoError(t, c.Send(protocol.NewUserJoined("Alice")))

	ev := <-c.Out()
	assert.Equal(t, protocol.EventUserJoined, ev.Name)
	assert.Equal(t, "Alice", ev.Payload)
}

func TestChanChannelFullMailbox(t *testing.T) {
	c := NewChanChannel(1)

	require.NoError(t, c.TrySend(protocol.NewUserJoined("Alice")))

	err := c.TrySend(protocol.NewUserJoined("Bob"))
	assert.ErrorIs(t, err, ErrChannelFull)

	// Draining frees capacity again.
	<-c.Out()
	assert.NoError(t, c.TrySend(protocol.NewUserJoined("Bob")))
}

func TestChanChannelClosed(t *testing.T) {
	c := NewChanChannel(1)
	c.Close()

	assert.ErrorIs(t, c.Send(protocol.NewUserJoined("Alice")), ErrChannelClosed)
	assert.ErrorIs(t, c.TrySend(protocol.NewUserJoined("Alice")), ErrChannelClosed)

	// Close is idempotent.
	c.Close()
}
