package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInviteTokenRoundTrip(t *testing.T) {
	signer := NewSigner("test_secret", 7*24*time.Hour)
	issuedAt := time.Now().UTC()

	tok, err := signer.GenerateInvite("uid-1", "ana@x.com", issuedAt)
	require.NoError(t, err)

	claims, err := signer.ParseInvite(tok, issuedAt.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.UID)
	assert.Equal(t, "ana@x.com", claims.Email)
	assert.Equal(t, issuedAt.UnixMilli(), claims.IssuedAt.UnixMilli())
}

func TestInviteTokenExpiryBoundary(t *testing.T) {
	signer := NewSigner("test_secret", 7*24*time.Hour)
	issuedAt := time.Now().UTC()

	tok, err := signer.GenerateInvite("uid-1", "ana@x.com", issuedAt)
	require.NoError(t, err)

	// Last valid instant is one millisecond before issuedAt+TTL.
	_, err = signer.ParseInvite(tok, issuedAt.Add(7*24*time.Hour-time.Millisecond))
	require.NoError(t, err)

	_, err = signer.ParseInvite(tok, issuedAt.Add(7*24*time.Hour))
	assert.ErrorIs(t, err, ErrExpired)

	_, err = signer.ParseInvite(tok, issuedAt.Add(7*24*time.Hour+time.Millisecond))
	assert.ErrorIs(t, err, ErrExpired)
}

func TestInviteTokenTamperRejected(t *testing.T) {
	signer := NewSigner("test_secret", time.Hour)
	tok, err := signer.GenerateInvite("uid-1", "ana@x.com", time.Now().UTC())
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	parts[0] = "uid-2"
	_, err = signer.ParseInvite(strings.Join(parts, "."), time.Now())
	assert.ErrorIs(t, err, ErrSignature)

	otherSigner := NewSigner("other_secret", time.Hour)
	_, err = otherSigner.ParseInvite(tok, time.Now())
	assert.ErrorIs(t, err, ErrSignature)

	_, err = signer.ParseInvite("not-a-token", time.Now())
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestActionCodeRoundTrip(t *testing.T) {
	signer := NewSigner("test_secret", time.Hour)
	now := time.Now().UTC()

	code, err := signer.GenerateActionCode(PurposeVerifyEmail, "uid-1", now)
	require.NoError(t, err)

	purpose, uid, err := signer.ParseActionCode(code, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, PurposeVerifyEmail, purpose)
	assert.Equal(t, "uid-1", uid)

	_, _, err = signer.ParseActionCode(code, now.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrExpired)
}
