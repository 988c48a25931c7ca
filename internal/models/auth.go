package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating an admin-console user.
// Grant defaults to "password"; "custom_token" exchanges a one-time sign-in
// credential issued at the end of onboarding.
type LoginRequest struct {
	Email       string `json:"email" validate:"required_without=CustomToken,omitempty,email"`
	Password    string `json:"password" validate:"required_without=CustomToken"`
	Grant       string `json:"grant,omitempty"`
	CustomToken string `json:"customToken,omitempty"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string   `json:"accessToken"`
	ExpiresIn   int64    `json:"expiresIn"`
	User        UserInfo `json:"user"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	UID         string   `json:"uid"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName"`
	Role        UserRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UID   string   `json:"uid"`
	Role  UserRole `json:"role"`
	Email string   `json:"email"`
	jwt.RegisteredClaims
}
