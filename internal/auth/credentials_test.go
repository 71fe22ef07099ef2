package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netvista-io/netsync/internal/auth"
	"github.com/netvista-io/netsync/pkg/netsync"
)

func TestBearerProvider(t *testing.T) {
	t.Parallel()

	t.Run("wraps the token", func(t *testing.T) {
		t.Parallel()

		provider := auth.NewBearerProvider(netsync.TokenProviderFunc(func(ctx context.Context) (string, error) {
			return "abc123", nil
		}))

		header, err := provider.AuthorizationHeader(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Bearer abc123", header)
	})

	t.Run("propagates token errors", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("token store offline")
		provider := auth.NewBearerProvider(netsync.TokenProviderFunc(func(ctx context.Context) (string, error) {
			return "", boom
		}))

		_, err := provider.AuthorizationHeader(context.Background())
		require.ErrorIs(t, err, boom)
	})
}

func TestBasicProvider(t *testing.T) {
	t.Parallel()

	provider := auth.NewBasicProvider("admin", "secret")

	header, err := provider.AuthorizationHeader(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Basic YWRtaW46c2VjcmV0", header)
}

func TestNewChainProvider(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("token preferred over basic auth", func(t *testing.T) {
		t.Parallel()

		tokens := netsync.TokenProviderFunc(func(ctx context.Context) (string, error) {
			return "tok", nil
		})

		provider, err := auth.NewChainProvider(tokens, "admin", "secret")
		require.NoError(t, err)

		header, err := provider.AuthorizationHeader(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Bearer tok", header)
	})

	t.Run("falls back to basic auth on token failure", func(t *testing.T) {
		t.Parallel()

		tokens := netsync.TokenProviderFunc(func(ctx context.Context) (string, error) {
			return "", errors.New("expired")
		})

		provider, err := auth.NewChainProvider(tokens, "admin", "secret")
		require.NoError(t, err)

		header, err := provider.AuthorizationHeader(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Basic YWRtaW46c2VjcmV0", header)
	})

	t.Run("basic auth only", func(t *testing.T) {
		t.Parallel()

		provider, err := auth.NewChainProvider(nil, "admin", "secret")
		require.NoError(t, err)

		header, err := provider.AuthorizationHeader(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Basic YWRtaW46c2VjcmV0", header)
	})

	t.Run("no credentials configured", func(t *testing.T) {
		t.Parallel()

		_, err := auth.NewChainProvider(nil, "", "")
		assert.ErrorIs(t, err, netsync.ErrCredentialsNeeded)
	})
}
