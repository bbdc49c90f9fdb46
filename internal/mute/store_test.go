package mute

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	group  = "120363000000000001@g.us"
	member = "923001112233@s.whatsapp.net"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openStore(t *testing.T, initial Registry) (*Store, *MemoryPersister) {
	t.Helper()
	p := NewMemoryPersister(initial)
	s, err := Open(context.Background(), p, discardLogger())
	require.NoError(t, err)
	return s, p
}

func TestStoreMuteIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, p := openStore(t, nil)

	added, err := s.Mute(ctx, group, member)
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, s.IsMuted(group, member))

	added, err = s.Mute(ctx, group, member)
	require.NoError(t, err)
	assert.False(t, added)

	assert.Equal(t, 1, p.Saves())
	assert.Equal(t, Registry{group: {member}}, p.Saved())
}

func TestStoreUnmute(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("after mute", func(t *testing.T) {
		s, p := openStore(t, nil)
		_, err := s.Mute(ctx, group, member)
		require.NoError(t, err)

		removed, err := s.Unmute(ctx, group, member)
		require.NoError(t, err)
		assert.True(t, removed)
		assert.False(t, s.IsMuted(group, member))
		assert.Equal(t, 2, p.Saves())
		assert.Empty(t, p.Saved())
	})

	t.Run("never muted", func(t *testing.T) {
		s, p := openStore(t, nil)

		removed, err := s.Unmute(ctx, group, member)
		require.NoError(t, err)
		assert.False(t, removed)
		assert.Zero(t, p.Saves())
	})
}

func TestStoreScopesMutesPerGroup(t *testing.T) {
	t.Parallel()
	s, _ := openStore(t, Registry{group: {member}})

	assert.True(t, s.IsMuted(group, member))
	assert.False(t, s.IsMuted("other@g.us", member))
	assert.False(t, s.IsMuted(group, "someone@s.whatsapp.net"))
}

func TestStoreOpenCollapsesDuplicates(t *testing.T) {
	t.Parallel()
	s, _ := openStore(t, Registry{group: {member, member, "a@s.whatsapp.net"}})

	assert.Equal(t, []string{member, "a@s.whatsapp.net"}, s.Muted(group))
}

func TestStoreRollsBackWhenSaveFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, p := openStore(t, Registry{group: {"a@s.whatsapp.net"}})
	boom := errors.New("disk full")
	p.Err = boom

	_, err := s.Mute(ctx, group, member)
	require.ErrorIs(t, err, boom)
	assert.False(t, s.IsMuted(group, member))

	_, err = s.Unmute(ctx, group, "a@s.whatsapp.net")
	require.ErrorIs(t, err, boom)
	assert.True(t, s.IsMuted(group, "a@s.whatsapp.net"))
}

func TestStoreRejectsEmptyIDs(t *testing.T) {
	t.Parallel()
	s, p := openStore(t, nil)

	_, err := s.Mute(context.Background(), " ", member)
	require.ErrorIs(t, err, ErrInvalidID)
	_, err = s.Unmute(context.Background(), group, "")
	require.ErrorIs(t, err, ErrInvalidID)
	assert.Zero(t, p.Saves())
}

type failingLoader struct{ MemoryPersister }

func (*failingLoader) Load(context.Context) (Registry, error) {
	return nil, errors.New("unreachable")
}

func TestOpenSurfacesLoadError(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), &failingLoader{}, discardLogger())
	require.ErrorContains(t, err, "load mute registry")
}

func TestStoreConcurrentMutations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, p := openStore(t, nil)

	const members = 50
	const racers = 20

	var wg sync.WaitGroup
	for i := range members {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("92300%07d@s.whatsapp.net", i)
			added, err := s.Mute(ctx, group, id)
			assert.NoError(t, err)
			assert.True(t, added)
			if i%2 == 0 {
				removed, err := s.Unmute(ctx, group, id)
				assert.NoError(t, err)
				assert.True(t, removed)
			}
		}()
	}

	var addedCount sync.Map
	for i := range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			added, err := s.Mute(ctx, group, member)
			assert.NoError(t, err)
			if added {
				addedCount.Store(i, true)
			}
			_ = s.IsMuted(group, member)
		}()
	}
	wg.Wait()

	winners := 0
	addedCount.Range(func(_, _ any) bool {
		winners++
		return true
	})
	assert.Equal(t, 1, winners, "exactly one racer adds the shared member")

	muted := s.Muted(group)
	require.Len(t, muted, members/2+1)
	assert.Contains(t, muted, member)
	for i := 1; i < members; i += 2 {
		assert.Contains(t, muted, fmt.Sprintf("92300%07d@s.whatsapp.net", i))
	}

	// one save per effective mute and unmute
	assert.Equal(t, members+members/2+1, p.Saves())
	assert.Equal(t, muted, p.Saved()[group])
}
