package metadata

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	sq, err := Open(ctx, "sqlite", filepath.Join(dir, "session.db"))
	require.NoError(t, err)
	bo, err := Open(ctx, "bolt", filepath.Join(dir, "session.bolt"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = sq.Close()
		_ = bo.Close()
	})
	return map[string]Store{"sqlite": sq, "bolt": bo}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), "redis", "x")
	require.Error(t, err)
}

func TestStore_Contract(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, s.Update(ctx, func(r Repository) error {
				if err := r.Set(ctx, "a", []byte{0xAA}); err != nil {
					return err
				}
				return r.Set(ctx, "b", []byte("bee"))
			}))

			require.NoError(t, s.View(ctx, func(r Repository) error {
				v, err := r.Get(ctx, "b")
				require.NoError(t, err)
				assert.Equal(t, []byte("bee"), v)

				missing, err := r.Get(ctx, "zzz")
				require.NoError(t, err)
				assert.Nil(t, missing)

				all, err := r.List(ctx)
				require.NoError(t, err)
				assert.Len(t, all, 2)
				return nil
			}))

			require.NoError(t, s.Update(ctx, func(r Repository) error {
				if err := r.Delete(ctx, "a"); err != nil {
					return err
				}
				// deleting twice is fine
				return r.Delete(ctx, "a")
			}))

			require.NoError(t, s.Update(ctx, func(r Repository) error { return r.Clear(ctx) }))
			require.NoError(t, s.View(ctx, func(r Repository) error {
				all, err := r.List(ctx)
				require.NoError(t, err)
				assert.Empty(t, all)
				return nil
			}))
		})
	}
}

func TestStore_UpdateRollsBackOnError(t *testing.T) {
	boom := errors.New("boom")

	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Update(ctx, func(r Repository) error {
				return r.Set(ctx, "token", []byte("kept"))
			}))

			err := s.Update(ctx, func(r Repository) error {
				if err := r.Set(ctx, "token", []byte("half")); err != nil {
					return err
				}
				return boom
			})
			require.ErrorIs(t, err, boom)

			require.NoError(t, s.View(ctx, func(r Repository) error {
				v, err := r.Get(ctx, "token")
				require.NoError(t, err)
				assert.Equal(t, []byte("kept"), v)
				return nil
			}))
		})
	}
}

func TestStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.bolt")

	s, err := OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, func(r Repository) error { return r.Set(ctx, "k", []byte("v")) }))
	require.NoError(t, s.Close())

	s, err = OpenBolt(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.View(ctx, func(r Repository) error {
		v, err := r.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), v)
		return nil
	}))
}
