package moderation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	assert.Equal(t, []string{"kick", "mute", "tagall", "unmute"}, r.Names())
	for _, name := range r.Names() {
		cmd, ok := r.Lookup(name)
		require.True(t, ok)
		assert.True(t, cmd.AdminOnly, name)
	}
}

func TestRegistryLookupIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	called := false
	r.Register(Command{Name: "Ping", Execute: func(context.Context, Invocation) error {
		called = true
		return nil
	}})

	cmd, ok := r.Lookup("PING")
	require.True(t, ok)
	require.NoError(t, cmd.Execute(context.Background(), Invocation{}))
	assert.True(t, called)

	_, ok = r.Lookup("pong")
	assert.False(t, ok)
}

func TestOpenCommandSkipsAdminCheck(t *testing.T) {
	h := newHarness(t, nil)
	r := NewRegistry()
	r.Register(Command{Name: "ping", Execute: func(ctx context.Context, inv Invocation) error {
		return inv.Channel.SendText(ctx, inv.Message.GroupID, "pong", nil)
	}})
	h.proc = NewProcessor(h.channel, h.store, discardLogger(), WithRegistry(r))

	require.NoError(t, h.proc.Handle(context.Background(), groupMessage(userA, "/ping")))
	assert.Equal(t, "pong", h.channel.lastSent().Text)
}

func TestHandleFormatsMemberIDs(t *testing.T) {
	assert.Equal(t, "@923000000002", Handle(userA))
	assert.Equal(t, "@111", Handle("111@lid"))
	assert.Equal(t, "@bare", Handle("bare"))
}
