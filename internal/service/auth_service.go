package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/cursova/cursova-api/internal/models"
	appErrors "github.com/cursova/cursova-api/pkg/errors"
)

// Login grant types.
const (
	GrantPassword    = "password"
	GrantCustomToken = "custom_token"
)

// AuthUserStore is the user lookup surface login needs.
type AuthUserStore interface {
	FindByUID(ctx context.Context, uid string) (*models.User, error)
	RecordLogin(ctx context.Context, uid string, at time.Time) error
}

// AuthService authenticates admin-console users and issues access tokens.
type AuthService struct {
	identities *IdentityService
	users      AuthUserStore
	secret     []byte
	issuer     string
	expiry     time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService constructs the service.
func NewAuthService(identities *IdentityService, users AuthUserStore, secret, issuer string, expiry time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		identities: identities,
		users:      users,
		secret:     []byte(secret),
		issuer:     issuer,
		expiry:     expiry,
		logger:     logger,
		now:        time.Now,
	}
}

// Login authenticates via the password grant or by exchanging a one-time
// custom token minted at the end of onboarding.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	switch req.Grant {
	case "", GrantPassword:
		return s.loginWithPassword(ctx, req.Email, req.Password)
	case GrantCustomToken:
		return s.loginWithCustomToken(ctx, req.CustomToken)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported grant type")
	}
}

func (s *AuthService) loginWithPassword(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	identity, err := s.identities.GetByEmail(ctx, email)
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Code == appErrors.ErrNotFound.Code {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.identities.CheckPassword(identity, password) {
		return nil, appErrors.ErrInvalidCredentials
	}
	return s.issueFor(ctx, identity.UID, identity)
}

func (s *AuthService) loginWithCustomToken(ctx context.Context, raw string) (*models.LoginResponse, error) {
	if raw == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "customToken is required")
	}
	uid, err := s.identities.VerifyCustomToken(raw)
	if err != nil {
		return nil, err
	}
	identity, err := s.identities.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.issueFor(ctx, uid, identity)
}

func (s *AuthService) issueFor(ctx context.Context, uid string, identity *models.Identity) (*models.LoginResponse, error) {
	if identity.Disabled {
		return nil, appErrors.ErrAccountSuspended
	}
	if !identity.EmailVerified {
		return nil, appErrors.ErrNotVerified
	}

	user, err := s.users.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}
	if user.Status == models.UserStatusSuspended {
		return nil, appErrors.ErrAccountSuspended
	}

	accessToken, expiresIn, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	if err := s.users.RecordLogin(ctx, uid, s.now().UTC()); err != nil {
		s.logger.Warn("failed to record login", zap.String("uid", uid), zap.Error(err))
	}

	return &models.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   expiresIn,
		User: models.UserInfo{
			UID:         user.UID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			Role:        user.Role,
		},
	}, nil
}

func (s *AuthService) generateToken(user *models.User) (string, int64, error) {
	now := s.now()
	claims := models.JWTClaims{
		UID:   user.UID,
		Role:  user.Role,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", 0, appErrors.Internal(err, "failed to sign access token")
	}
	return signed, int64(s.expiry.Seconds()), nil
}

// ValidateToken parses and validates an access token.
func (s *AuthService) ValidateToken(raw string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, appErrors.ErrUnauthorized
	}
	return claims, nil
}
