package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cursova/cursova-api/internal/models"
	appErrors "github.com/cursova/cursova-api/pkg/errors"
	"github.com/cursova/cursova-api/pkg/token"
)

// IdentityStore is the persistence surface the identity service needs.
type IdentityStore interface {
	Create(ctx context.Context, identity *models.Identity) error
	FindByUID(ctx context.Context, uid string) (*models.Identity, error)
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
	UpdatePassword(ctx context.Context, uid, passwordHash string) error
	SetVerified(ctx context.Context, uid string, verified bool) error
	SetDisabled(ctx context.Context, uid string, disabled bool) error
	Delete(ctx context.Context, uid string) error
}

// IdentityService manages authentication accounts: creation, credentials,
// verification flags and one-time sign-in tokens. New accounts start
// unverified and disabled; onboarding flips both flags.
type IdentityService struct {
	store      IdentityStore
	signer     *token.Signer
	jwtSecret  []byte
	jwtIssuer  string
	customTTL  time.Duration
	logger     *zap.Logger
	now        func() time.Time
	bcryptCost int
}

// NewIdentityService constructs the service.
func NewIdentityService(store IdentityStore, signer *token.Signer, jwtSecret, jwtIssuer string, customTTL time.Duration, logger *zap.Logger) *IdentityService {
	return &IdentityService{
		store:      store,
		signer:     signer,
		jwtSecret:  []byte(jwtSecret),
		jwtIssuer:  jwtIssuer,
		customTTL:  customTTL,
		logger:     logger,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// CreateIdentity provisions a disabled, unverified account with a random
// placeholder password. The real password is set during onboarding.
func (s *IdentityService) CreateIdentity(ctx context.Context, email string) (*models.Identity, error) {
	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.ErrEmailExists
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to check existing identity")
	}

	placeholder, err := bcrypt.GenerateFromPassword([]byte(s.now().Format(time.RFC3339Nano)), s.bcryptCost)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to provision identity")
	}

	identity := &models.Identity{
		Email:         email,
		PasswordHash:  string(placeholder),
		EmailVerified: false,
		Disabled:      true,
	}
	if err := s.store.Create(ctx, identity); err != nil {
		return nil, appErrors.Internal(err, "failed to create identity")
	}

	s.logger.Info("identity created", zap.String("uid", identity.UID))
	return identity, nil
}

// GetByEmail looks up an identity by email.
func (s *IdentityService) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	identity, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Internal(err, "failed to load identity")
	}
	return identity, nil
}

// GetByUID looks up an identity by uid.
func (s *IdentityService) GetByUID(ctx context.Context, uid string) (*models.Identity, error) {
	identity, err := s.store.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Internal(err, "failed to load identity")
	}
	return identity, nil
}

// SetPassword hashes and stores a new password. Passwords shorter than six
// characters are rejected.
func (s *IdentityService) SetPassword(ctx context.Context, uid, password string) error {
	if len(password) < 6 {
		return appErrors.ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return appErrors.Internal(err, "failed to hash password")
	}
	if err := s.store.UpdatePassword(ctx, uid, string(hash)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Internal(err, "failed to update password")
	}
	return nil
}

// CheckPassword verifies credentials against the stored hash.
func (s *IdentityService) CheckPassword(identity *models.Identity, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)) == nil
}

// SetVerified flips the email_verified flag.
func (s *IdentityService) SetVerified(ctx context.Context, uid string, verified bool) error {
	if err := s.store.SetVerified(ctx, uid, verified); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Internal(err, "failed to update verification flag")
	}
	return nil
}

// SetDisabled enables or disables the account.
func (s *IdentityService) SetDisabled(ctx context.Context, uid string, disabled bool) error {
	if err := s.store.SetDisabled(ctx, uid, disabled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Internal(err, "failed to update account state")
	}
	return nil
}

// Delete removes the identity; the owning user document cascades.
func (s *IdentityService) Delete(ctx context.Context, uid string) error {
	if err := s.store.Delete(ctx, uid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Internal(err, "failed to delete identity")
	}
	return nil
}

// GenerateActionCode issues a single-purpose code for verification and
// password links.
func (s *IdentityService) GenerateActionCode(purpose, uid string) (string, error) {
	code, err := s.signer.GenerateActionCode(purpose, uid, s.now())
	if err != nil {
		return "", appErrors.Internal(err, "failed to generate action code")
	}
	return code, nil
}

// VerifyActionCode validates a code and returns the subject uid. The purpose
// embedded in the code must match the expected one.
func (s *IdentityService) VerifyActionCode(code, expectedPurpose string) (string, error) {
	purpose, uid, err := s.signer.ParseActionCode(code, s.now())
	if err != nil {
		switch {
		case errors.Is(err, token.ErrExpired):
			return "", appErrors.ErrExpired
		default:
			return "", appErrors.ErrInvalidToken
		}
	}
	if purpose != expectedPurpose {
		return "", appErrors.ErrInvalidToken
	}
	return uid, nil
}

// IssueCustomToken mints a short-lived JWT used for the one-time sign-in at
// the end of onboarding.
func (s *IdentityService) IssueCustomToken(uid string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": uid,
		"iss": s.jwtIssuer,
		"use": "custom",
		"iat": now.Unix(),
		"exp": now.Add(s.customTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", appErrors.Internal(err, "failed to issue custom token")
	}
	return signed, nil
}

// VerifyCustomToken validates a custom token and returns the subject uid.
func (s *IdentityService) VerifyCustomToken(raw string) (string, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(s.jwtIssuer), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return "", appErrors.ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || claims["use"] != "custom" {
		return "", appErrors.ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", appErrors.ErrInvalidToken
	}
	return sub, nil
}
