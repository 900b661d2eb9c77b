package sessionvalkey_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devshare/devshare-cli/internal/dbtest/valkeytest"
	"github.com/devshare/devshare-cli/internal/serviceerr"
	sessionvalkey "github.com/devshare/devshare-cli/internal/session/valkey"
)

func TestStore(t *testing.T) {
	if os.Getenv("DEVSHARE_INTEGRATION") == "" {
		t.Skip("set DEVSHARE_INTEGRATION to run container-backed tests")
	}

	ctx := t.Context()

	client, _, terminate := valkeytest.Start(ctx)
	t.Cleanup(func() { terminate(ctx) })
	t.Cleanup(client.Close)

	t.Run("round trip", func(t *testing.T) {
		store := sessionvalkey.NewStore(client, "test")

		require.NoError(t, store.Set(ctx, "access_token", "A"))

		value, err := store.Get(ctx, "access_token")
		require.NoError(t, err)
		assert.Equal(t, "A", value)

		require.NoError(t, store.Delete(ctx, "access_token"))

		_, err = store.Get(ctx, "access_token")
		assert.ErrorIs(t, err, serviceerr.ErrNotFound)
	})

	t.Run("deleting an absent key is not an error", func(t *testing.T) {
		store := sessionvalkey.NewStore(client, "test")

		assert.NoError(t, store.Delete(ctx, "never_set"))
	})

	t.Run("prefixes keep stores apart", func(t *testing.T) {
		first := sessionvalkey.NewStore(client, "alpha")
		second := sessionvalkey.NewStore(client, "beta")

		require.NoError(t, first.Set(ctx, "theme", "dark"))

		_, err := second.Get(ctx, "theme")
		assert.ErrorIs(t, err, serviceerr.ErrNotFound)

		value, err := first.Get(ctx, "theme")
		require.NoError(t, err)
		assert.Equal(t, "dark", value)
	})

	t.Run("trailing colon in the prefix is normalised", func(t *testing.T) {
		plain := sessionvalkey.NewStore(client, "gamma")
		trailing := sessionvalkey.NewStore(client, "gamma:")

		require.NoError(t, trailing.Set(ctx, "theme", "light"))

		value, err := plain.Get(ctx, "theme")
		require.NoError(t, err)
		assert.Equal(t, "light", value)
	})
}
