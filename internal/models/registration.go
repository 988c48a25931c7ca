package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// RegistrationStatus is the moderation state of a course registration.
type RegistrationStatus string

// Registration statuses. Values travel over the wire in lowercase.
const (
	RegistrationStatusPending  RegistrationStatus = "pending"
	RegistrationStatusApproved RegistrationStatus = "approved"
	RegistrationStatusRejected RegistrationStatus = "rejected"
)

// ValidRegistrationStatus reports whether s is one of the enumerated values.
func ValidRegistrationStatus(s RegistrationStatus) bool {
	switch s {
	case RegistrationStatusPending, RegistrationStatusApproved, RegistrationStatusRejected:
		return true
	}
	return false
}

// Registration is a course-registration submission awaiting moderation.
// Answers keeps the applicant's raw form payload; name, email and course are
// extracted for listing and notifications.
type Registration struct {
	ID          string             `db:"id" json:"id"`
	Name        string             `db:"name" json:"name"`
	Email       string             `db:"email" json:"email"`
	Course      string             `db:"course" json:"course"`
	Answers     types.JSONText     `db:"answers" json:"answers"`
	Status      RegistrationStatus `db:"status" json:"status"`
	LastMessage *string            `db:"last_message" json:"lastMessage,omitempty"`
	CreatedAt   time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `db:"updated_at" json:"updatedAt"`

	StatusHistory []StatusChange `db:"-" json:"statusHistory"`
}

// StatusChange is one append-only entry in a registration's status history.
type StatusChange struct {
	ID             string             `db:"id" json:"-"`
	RegistrationID string             `db:"registration_id" json:"-"`
	Position       int                `db:"position" json:"-"`
	Status         RegistrationStatus `db:"status" json:"status"`
	Message        *string            `db:"message" json:"message,omitempty"`
	ChangedAt      time.Time          `db:"changed_at" json:"changedAt"`
}

// RegistrationFilter narrows the admin list view.
type RegistrationFilter struct {
	Status RegistrationStatus
}

// TransitionResult is returned by the status-transition operation.
type TransitionResult struct {
	ID             string              `json:"id"`
	Status         RegistrationStatus  `json:"status"`
	UpdatedAt      time.Time           `json:"updatedAt"`
	PreviousStatus *RegistrationStatus `json:"previousStatus,omitempty"`
}
