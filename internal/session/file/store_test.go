package sessionfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devshare/devshare-cli/internal/serviceerr"
	sessionfile "github.com/devshare/devshare-cli/internal/session/file"
)

func TestStore(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		store := sessionfile.NewStore(filepath.Join(t.TempDir(), "session.json"))

		require.NoError(t, store.Set(t.Context(), "access_token", "A"))
		require.NoError(t, store.Set(t.Context(), "refresh_token", "R"))

		value, err := store.Get(t.Context(), "access_token")
		require.NoError(t, err)
		assert.Equal(t, "A", value)

		require.NoError(t, store.Delete(t.Context(), "access_token"))

		_, err = store.Get(t.Context(), "access_token")
		assert.ErrorIs(t, err, serviceerr.ErrNotFound)

		value, err = store.Get(t.Context(), "refresh_token")
		require.NoError(t, err)
		assert.Equal(t, "R", value)
	})

	t.Run("missing file reads as empty", func(t *testing.T) {
		store := sessionfile.NewStore(filepath.Join(t.TempDir(), "absent.json"))

		_, err := store.Get(t.Context(), "access_token")
		assert.ErrorIs(t, err, serviceerr.ErrNotFound)
	})

	t.Run("deleting an absent key is not an error", func(t *testing.T) {
		store := sessionfile.NewStore(filepath.Join(t.TempDir(), "session.json"))

		assert.NoError(t, store.Delete(t.Context(), "access_token"))
	})

	t.Run("creates the parent directory and restricts permissions", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "deeper", "session.json")
		store := sessionfile.NewStore(path)

		require.NoError(t, store.Set(t.Context(), "access_token", "A"))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("values survive a new store on the same path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")

		first := sessionfile.NewStore(path)
		require.NoError(t, first.Set(t.Context(), "theme", "dark"))

		second := sessionfile.NewStore(path)
		value, err := second.Get(t.Context(), "theme")
		require.NoError(t, err)
		assert.Equal(t, "dark", value)
	})

	t.Run("corrupt file surfaces a decode error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		store := sessionfile.NewStore(path)

		_, err := store.Get(t.Context(), "access_token")
		assert.ErrorContains(t, err, "decoding session file")
	})
}
