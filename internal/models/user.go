package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// UserRole represents the closed set of platform roles.
type UserRole string

const (
	RoleAdmin       UserRole = "ADMIN"
	RoleCoordinator UserRole = "COORDINATOR"
	RoleProfessor   UserRole = "PROFESSOR"
	RoleStudent     UserRole = "STUDENT"
)

// ValidUserRole reports whether r is one of the enumerated roles.
func ValidUserRole(r UserRole) bool {
	switch r {
	case RoleAdmin, RoleCoordinator, RoleProfessor, RoleStudent:
		return true
	}
	return false
}

// RolePermissions is the static role -> permissions table. A user's
// permissions column is a denormalized snapshot taken from this table at
// last write, never recomputed on read.
var RolePermissions = map[UserRole][]string{
	RoleAdmin:       {"users:manage", "registrations:manage", "courses:manage", "blog:manage", "invitations:manage"},
	RoleCoordinator: {"registrations:manage", "courses:manage", "invitations:manage"},
	RoleProfessor:   {"courses:read", "registrations:read"},
	RoleStudent:     {"courses:read"},
}

// UserStatus is the onboarding/lifecycle state of a user document.
type UserStatus string

const (
	UserStatusPending   UserStatus = "PENDING"
	UserStatusVerified  UserStatus = "VERIFIED"
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusInactive  UserStatus = "INACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the profile document owned by an identity.
type User struct {
	UID                   string         `db:"uid" json:"uid"`
	Email                 string         `db:"email" json:"email"`
	DisplayName           string         `db:"display_name" json:"displayName"`
	Role                  UserRole       `db:"role" json:"role"`
	Status                UserStatus     `db:"status" json:"status"`
	FirstName             string         `db:"first_name" json:"firstName,omitempty"`
	LastName              string         `db:"last_name" json:"lastName,omitempty"`
	Bio                   string         `db:"bio" json:"bio,omitempty"`
	Department            string         `db:"department" json:"department,omitempty"`
	Permissions           types.JSONText `db:"permissions" json:"permissions"`
	Preferences           types.JSONText `db:"preferences" json:"preferences,omitempty"`
	PasswordSet           bool           `db:"password_set" json:"passwordSet"`
	OnboardingCompletedAt *time.Time     `db:"onboarding_completed_at" json:"onboardingCompletedAt,omitempty"`
	LastLoginAt           *time.Time     `db:"last_login_at" json:"lastLoginAt,omitempty"`
	LoginCount            int            `db:"login_count" json:"loginCount"`
	CreatedAt             time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time      `db:"updated_at" json:"updatedAt"`
}

// Identity is an authentication account as seen by the identity provider
// port. It is deliberately separate from the User profile document.
type Identity struct {
	UID           string    `db:"uid" json:"uid"`
	Email         string    `db:"email" json:"email"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	EmailVerified bool      `db:"email_verified" json:"emailVerified"`
	Disabled      bool      `db:"disabled" json:"disabled"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// CreateUserRequest is the admin payload for provisioning a user with an
// onboarding invitation.
type CreateUserRequest struct {
	Email          string   `json:"email" validate:"required,email"`
	DisplayName    string   `json:"displayName" validate:"required,min=2,max=120"`
	Role           UserRole `json:"role" validate:"required"`
	FirstName      string   `json:"firstName,omitempty" validate:"omitempty,max=80"`
	LastName       string   `json:"lastName,omitempty" validate:"omitempty,max=80"`
	Department     string   `json:"department,omitempty" validate:"omitempty,max=120"`
	SendInvitation *bool    `json:"sendInvitation,omitempty"`
}

// ShouldSendInvitation defaults to true when the flag is omitted.
func (r *CreateUserRequest) ShouldSendInvitation() bool {
	return r.SendInvitation == nil || *r.SendInvitation
}

// CreateUserResult reports the outcome of provisioning. Invitation delivery
// is best-effort: when the user exists but the invite could not be prepared,
// InvitationError carries the reason and the caller may resend later.
type CreateUserResult struct {
	User            *User       `json:"user"`
	Invitation      *Invitation `json:"invitation,omitempty"`
	InvitationError string      `json:"invitationError,omitempty"`
}

// SetPasswordRequest completes onboarding.
type SetPasswordRequest struct {
	Code     string `json:"code" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// VerifyEmailRequest confirms ownership of the invited address.
type VerifyEmailRequest struct {
	Code string `json:"code" validate:"required"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      UserRole
	Status    UserStatus
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
