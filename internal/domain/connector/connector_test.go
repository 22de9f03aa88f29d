package connector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnector(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := NewConnector("My Store", "12345")
		require.NoError(t, err)

		assert.Equal(t, AuthNotConnected, c.AuthStatus)
		assert.Equal(t, DefaultAPIBaseURL, c.APIBaseURL)
		assert.Equal(t, MatchMappingFirst, c.MatchPriority)
		assert.Equal(t, MatchBySKU, c.ProductMatchBy)
		assert.Equal(t, CustomerByEmail, c.CustomerMatchBy)
		assert.True(t, c.AutoCreateSaleOrder)
		assert.True(t, c.SyncStatusToZid)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := NewConnector("  ", "12345")
		assert.ErrorIs(t, err, ErrNameRequired)
	})

	t.Run("missing store id", func(t *testing.T) {
		_, err := NewConnector("My Store", "")
		assert.ErrorIs(t, err, ErrStoreIDRequired)
	})
}

func TestConnector_RequireConnected(t *testing.T) {
	c, err := NewConnector("My Store", "12345")
	require.NoError(t, err)

	assert.ErrorIs(t, c.RequireConnected(), ErrNotConnected)

	require.NoError(t, c.MarkConnected("tok", "mgr", StoreProfile{Name: "My Store"}))
	assert.NoError(t, c.RequireConnected())

	c.MarkAuthFailure(true)
	assert.Equal(t, AuthExpired, c.AuthStatus)
	assert.ErrorIs(t, c.RequireConnected(), ErrNotConnected)

	c.MarkAuthFailure(false)
	assert.Equal(t, AuthError, c.AuthStatus)
}

func TestConnector_MarkConnected_EmptyToken(t *testing.T) {
	c, err := NewConnector("My Store", "12345")
	require.NoError(t, err)

	assert.ErrorIs(t, c.MarkConnected("", "", StoreProfile{}), ErrTokenRequired)
}

func TestConnector_ImportLocks(t *testing.T) {
	c, err := NewConnector("My Store", "12345")
	require.NoError(t, err)

	now := time.Now()

	require.NoError(t, c.AcquireLock(ImportOrders, now))
	assert.ErrorIs(t, c.AcquireLock(ImportOrders, now), ErrImportInProgress)

	// A different kind is independent.
	require.NoError(t, c.AcquireLock(ImportProducts, now))

	c.ReleaseLock(ImportOrders)
	assert.NoError(t, c.AcquireLock(ImportOrders, now))
}

func TestConnector_ResetExpiredLocks(t *testing.T) {
	c, err := NewConnector("My Store", "12345")
	require.NoError(t, err)

	started := time.Now().Add(-2 * time.Hour)
	require.NoError(t, c.AcquireLock(ImportOrders, started))
	require.NoError(t, c.AcquireLock(ImportProducts, time.Now()))

	reset := c.ResetExpiredLocks(time.Now(), time.Hour)
	assert.Equal(t, []ImportKind{ImportOrders}, reset)

	// The expired lock can be re-acquired, the fresh one still holds.
	assert.NoError(t, c.AcquireLock(ImportOrders, time.Now()))
	assert.ErrorIs(t, c.AcquireLock(ImportProducts, time.Now()), ErrImportInProgress)
}
