package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "confirmation-secret-at-least-32-bytes!!"

func TestConfirmation_RedeemOnce(t *testing.T) {
	m := NewConfirmationManager(testSecret, time.Minute)

	token, err := m.Issue("u1", "announcements", "a1")
	require.NoError(t, err)

	require.NoError(t, m.Redeem(token, "u1", "announcements", "a1"))
	assert.ErrorIs(t, m.Redeem(token, "u1", "announcements", "a1"), ErrConfirmationUsed)
}

func TestConfirmation_BoundToUserViewAndRow(t *testing.T) {
	m := NewConfirmationManager(testSecret, time.Minute)

	token, err := m.Issue("u1", "posts", "p1")
	require.NoError(t, err)

	assert.ErrorIs(t, m.Redeem(token, "u2", "posts", "p1"), ErrConfirmationInvalid)
	assert.ErrorIs(t, m.Redeem(token, "u1", "resources", "p1"), ErrConfirmationInvalid)
	assert.ErrorIs(t, m.Redeem(token, "u1", "posts", "p2"), ErrConfirmationInvalid)

	// failed attempts do not burn the token
	assert.NoError(t, m.Redeem(token, "u1", "posts", "p1"))
}

func TestConfirmation_RejectsForeignSignature(t *testing.T) {
	other := NewConfirmationManager("another-secret-at-least-32-bytes!!!!!", time.Minute)
	token, err := other.Issue("u1", "posts", "p1")
	require.NoError(t, err)

	m := NewConfirmationManager(testSecret, time.Minute)
	assert.ErrorIs(t, m.Redeem(token, "u1", "posts", "p1"), ErrConfirmationInvalid)
	assert.ErrorIs(t, m.Redeem("not-a-token", "u1", "posts", "p1"), ErrConfirmationInvalid)
}

func TestConfirmation_Expiry(t *testing.T) {
	now := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	m := NewConfirmationManager(testSecret, 0)
	m.now = func() time.Time { return now }

	token, err := m.Issue("u1", "users", "u9")
	require.NoError(t, err)

	now = now.Add(DefaultConfirmationTTL + time.Second)
	assert.ErrorIs(t, m.Redeem(token, "u1", "users", "u9"), ErrConfirmationInvalid)
}

func TestConfirmation_Sweep(t *testing.T) {
	now := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	m := NewConfirmationManager(testSecret, time.Minute)
	m.now = func() time.Time { return now }

	for _, row := range []string{"a", "b"} {
		token, err := m.Issue("u1", "announcements", row)
		require.NoError(t, err)
		require.NoError(t, m.Redeem(token, "u1", "announcements", row))
	}

	assert.Equal(t, 0, m.Sweep(now))
	assert.Equal(t, 2, m.Sweep(now.Add(2*time.Minute)))
	assert.Equal(t, 0, m.Sweep(now.Add(2*time.Minute)))
}
