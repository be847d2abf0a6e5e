package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeExpiry_Permanent(t *testing.T) {
	now := time.Now()

	// No hours requested, permanent files just don't expire
	assert.Nil(t, ComputeExpiry(0, 24, false, now))
	assert.Nil(t, ComputeExpiry(-5, 24, false, now))

	ts := ComputeExpiry(3, 24, false, now)
	require.NotNil(t, ts)
	assert.Equal(t, now.Add(3*time.Hour).Unix(), *ts)
}

func TestComputeExpiry_Litterbox(t *testing.T) {
	now := time.Now()

	// Missing or garbage input falls back to the tier default
	ts := ComputeExpiry(0, 24, true, now)
	require.NotNil(t, ts)
	assert.Equal(t, now.Add(24*time.Hour).Unix(), *ts)

	ts = ComputeExpiry(-1, 24, true, now)
	require.NotNil(t, ts)
	assert.Equal(t, now.Add(24*time.Hour).Unix(), *ts)

	// Explicit hours are honored with no upper bound
	ts = ComputeExpiry(24 * 365, 24, true, now)
	require.NotNil(t, ts)
	assert.Equal(t, now.Add(24*365*time.Hour).Unix(), *ts)
}

func TestIsExpired_Boundary(t *testing.T) {
	now := time.Now()

	past := now.Add(-time.Second).Unix()
	exact := now.Unix()
	future := now.Add(time.Hour).Unix()

	assert.True(t, IsExpired(&past, now))
	// Expiry equal to now is not yet expired, the comparison is strict
	assert.False(t, IsExpired(&exact, now))
	assert.False(t, IsExpired(&future, now))
	assert.False(t, IsExpired(nil, now))
}
