package models

import "time"

// InvitationStatus is the lifecycle state of an invitation.
type InvitationStatus string

const (
	InvitationStatusPending   InvitationStatus = "pending"
	InvitationStatusSent      InvitationStatus = "sent"
	InvitationStatusVerified  InvitationStatus = "verified"
	InvitationStatusCompleted InvitationStatus = "completed"
	InvitationStatusExpired   InvitationStatus = "expired"
	InvitationStatusAccepted  InvitationStatus = "accepted"
	InvitationStatusCancelled InvitationStatus = "cancelled"
)

// ActiveInvitationStatuses are the states in which a token is still usable.
var ActiveInvitationStatuses = []InvitationStatus{
	InvitationStatusPending,
	InvitationStatusSent,
	InvitationStatusVerified,
}

// Invitation tracks an onboarding invite issued alongside a new user.
// The bearer token is HMAC-bound to {uid, email, issuedAt} and is valid
// only while now < issuedAt + TTL and the status is still active.
type Invitation struct {
	ID               string           `db:"id" json:"id"`
	Email            string           `db:"email" json:"email"`
	Role             UserRole         `db:"role" json:"role"`
	Token            string           `db:"token" json:"token"`
	InvitedBy        string           `db:"invited_by" json:"invitedBy,omitempty"`
	Status           InvitationStatus `db:"status" json:"status"`
	VerificationLink string           `db:"verification_link" json:"verificationLink,omitempty"`
	PasswordLink     string           `db:"password_link" json:"passwordLink,omitempty"`
	CreatedAt        time.Time        `db:"created_at" json:"createdAt"`
	ExpiresAt        time.Time        `db:"expires_at" json:"expiresAt"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updatedAt"`
}

// IsExpired reports whether the invitation window has passed.
func (i *Invitation) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// IsActive reports whether the invitation can still be consumed.
func (i *Invitation) IsActive(now time.Time) bool {
	if i.IsExpired(now) {
		return false
	}
	for _, s := range ActiveInvitationStatuses {
		if i.Status == s {
			return true
		}
	}
	return false
}
