package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSeatTokenRoundTrip(t *testing.T) {
	auth, err := NewSeatAuth(nil, "")
	require.NoError(t, err)
	assert.False(t, auth.PinRequired())

	token, err := auth.IssueSeat("session-1", 3)
	require.NoError(t, err)

	sid, slot, err := auth.ValidateSeat(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", sid)
	assert.Equal(t, 3, slot)
}

func TestSeatTokenRejected(t *testing.T) {
	auth, err := NewSeatAuth(nil, "")
	require.NoError(t, err)

	expired, err := auth.issueSeat("session-1", 0, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, _, err = auth.ValidateSeat(expired)
	assert.Error(t, err, "expired")

	other, err := NewSeatAuth(nil, "")
	require.NoError(t, err)
	foreign, err := other.IssueSeat("session-1", 0)
	require.NoError(t, err)
	_, _, err = auth.ValidateSeat(foreign)
	assert.Error(t, err, "signed with another secret")

	_, _, err = auth.ValidateSeat("not-a-token")
	assert.Error(t, err)

	empty, err := auth.IssueSeat("", 0)
	require.NoError(t, err)
	_, _, err = auth.ValidateSeat(empty)
	assert.Error(t, err, "no session id")
}

func TestHostPin(t *testing.T) {
	auth, err := NewSeatAuth(nil, "4321")
	require.NoError(t, err)
	assert.True(t, auth.PinRequired())

	assert.NoError(t, auth.CheckHostPin("4321", "10.0.0.1"))
	assert.ErrorIs(t, auth.CheckHostPin("0000", "10.0.0.1"), ErrBadPin)
}

func TestPinRateLimit(t *testing.T) {
	auth, err := NewSeatAuth(nil, "")
	require.NoError(t, err)

	for i := 0; i < maxPinAttempts; i++ {
		if !auth.checkRate("10.0.0.2") {
			t.Fatalf("attempt %d refused", i+1)
		}
	}
	assert.False(t, auth.checkRate("10.0.0.2"))
	assert.True(t, auth.checkRate("10.0.0.3"), "limits are per address")

	auth.rateMap["10.0.0.2"].ResetAt = time.Now().Add(-time.Second)
	assert.True(t, auth.checkRate("10.0.0.2"), "window expired")
}

func TestSeatSecretPersists(t *testing.T) {
	db := openTestDB(t)
	first, err := NewSeatAuth(db, "")
	require.NoError(t, err)
	token, err := first.IssueSeat("session-1", 1)
	require.NoError(t, err)

	second, err := NewSeatAuth(db, "")
	require.NoError(t, err)
	_, slot, err := second.ValidateSeat(token)
	require.NoError(t, err, "restart keeps accepting issued seats")
	assert.Equal(t, 1, slot)
}
