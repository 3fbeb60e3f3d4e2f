package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-khodro/cargo-relay/internal/config"
	"github.com/aria-khodro/cargo-relay/internal/core/domain"
)

func newTestStore(t *testing.T) *TokenStore {
	t.Helper()
	store, err := NewTokenStore(config.SQLiteConfig{
		DatabasePath: filepath.Join(t.TempDir(), "tokens.sqlite"),
		BusyTimeout:  time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestTokensPrefixMatchWithinScope(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RegisterToken(ctx, domain.ScopeUser, "42", "t1"))
	require.NoError(t, store.RegisterToken(ctx, domain.ScopeUser, "42:android", "t2"))
	require.NoError(t, store.RegisterToken(ctx, domain.ScopeUser, "7", "t3"))
	require.NoError(t, store.RegisterToken(ctx, domain.ScopeCorporate, "42", "t4"))

	tokens, err := store.Tokens(ctx, domain.ScopeUser, "42")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, tokens)
}

func TestTokensUnknownClientIsEmpty(t *testing.T) {
	store := newTestStore(t)

	tokens, err := store.Tokens(context.Background(), domain.ScopeUser, "absent")
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestNewTokenStoreRequiresPath(t *testing.T) {
	_, err := NewTokenStore(config.SQLiteConfig{})
	assert.Error(t, err)
}
