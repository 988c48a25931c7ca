package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors distinguishing rejection causes.
var (
	ErrMalformed = errors.New("token malformed")
	ErrSignature = errors.New("token signature mismatch")
	ErrExpired   = errors.New("token expired")
)

// Action code purposes accepted by the identity layer.
const (
	PurposeVerifyEmail   = "verify_email"
	PurposeResetPassword = "reset_password"
)

// InviteClaims is the data bound into an invitation token.
type InviteClaims struct {
	UID      string
	Email    string
	IssuedAt time.Time
}

// Signer creates and validates HMAC-bound invitation tokens and action codes.
// Tokens are opaque to clients but tamper-evident: the signature covers every
// embedded field, so the uid/email/timestamp triplet cannot be forged.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner constructs a signer with the provided secret and validity window.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// TTL returns the validity window applied to issued tokens.
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// GenerateInvite returns an invitation token embedding uid, email and the
// issue time in milliseconds.
func (s *Signer) GenerateInvite(uid, email string, issuedAt time.Time) (string, error) {
	if uid == "" || email == "" {
		return "", fmt.Errorf("uid and email required")
	}
	if len(s.secret) == 0 {
		return "", fmt.Errorf("signing secret missing")
	}
	encodedEmail := base64.RawURLEncoding.EncodeToString([]byte(email))
	ts := strconv.FormatInt(issuedAt.UnixMilli(), 10)
	signature := s.sign(uid, encodedEmail, ts)
	return strings.Join([]string{uid, encodedEmail, ts, signature}, "."), nil
}

// ParseInvite validates a token and returns the embedded claims. Expiry is
// checked against now; one millisecond past issuedAt+TTL is rejected.
func (s *Signer) ParseInvite(token string, now time.Time) (*InviteClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return nil, ErrMalformed
	}
	uid, encodedEmail, ts, signature := parts[0], parts[1], parts[2], parts[3]

	expected := s.sign(uid, encodedEmail, ts)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, ErrSignature
	}

	rawEmail, err := base64.RawURLEncoding.DecodeString(encodedEmail)
	if err != nil {
		return nil, ErrMalformed
	}
	millis, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return nil, ErrMalformed
	}

	issuedAt := time.UnixMilli(millis)
	if !now.Before(issuedAt.Add(s.ttl)) {
		return nil, ErrExpired
	}

	return &InviteClaims{UID: uid, Email: string(rawEmail), IssuedAt: issuedAt}, nil
}

// GenerateActionCode returns a single-purpose code used for email
// verification and password reset links.
func (s *Signer) GenerateActionCode(purpose, uid string, issuedAt time.Time) (string, error) {
	if purpose == "" || uid == "" {
		return "", fmt.Errorf("purpose and uid required")
	}
	expiresAt := issuedAt.Add(s.ttl)
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	signature := s.sign(purpose, uid, ts)
	return strings.Join([]string{purpose, uid, ts, signature}, "."), nil
}

// ParseActionCode validates a code and returns its purpose and uid.
func (s *Signer) ParseActionCode(code string, now time.Time) (purpose, uid string, err error) {
	parts := strings.Split(code, ".")
	if len(parts) != 4 {
		return "", "", ErrMalformed
	}
	purpose, uid, ts, signature := parts[0], parts[1], parts[2], parts[3]

	expected := s.sign(purpose, uid, ts)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return "", "", ErrSignature
	}

	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return "", "", ErrMalformed
	}
	if now.After(time.Unix(expUnix, 0)) {
		return "", "", ErrExpired
	}

	return purpose, uid, nil
}

func (s *Signer) sign(fields ...string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(strings.Join(fields, "|")))
	return hex.EncodeToString(mac.Sum(nil))
}
