package redisstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/marslan-786/group-guard/internal/mute"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPersister(t *testing.T) (*Persister, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, ""), srv
}

func TestLoadEmptyKey(t *testing.T) {
	p, _ := newPersister(t)

	reg, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reg)
}

func TestSaveThenLoad(t *testing.T) {
	ctx := context.Background()
	p, srv := newPersister(t)
	want := mute.Registry{"g@g.us": {"a@s.whatsapp.net", "b@s.whatsapp.net"}}

	require.NoError(t, p.Save(ctx, want))
	assert.True(t, srv.Exists(DefaultKey))
	assert.Zero(t, srv.TTL(DefaultKey))

	got, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadCorruptValue(t *testing.T) {
	p, srv := newPersister(t)
	require.NoError(t, srv.Set(DefaultKey, "nope"))

	_, err := p.Load(context.Background())
	require.ErrorContains(t, err, "decode")
}

func TestDial(t *testing.T) {
	srv := miniredis.RunT(t)

	rdb, err := Dial(context.Background(), "redis://"+srv.Addr()+"/0")
	require.NoError(t, err)
	require.NoError(t, rdb.Close())

	_, err = Dial(context.Background(), "not a url")
	require.Error(t, err)
}
