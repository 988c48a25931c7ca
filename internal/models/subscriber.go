package models

import "time"

// Subscriber is a newsletter signup.
type Subscriber struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// DeviceToken registers a push-capable device for a user.
type DeviceToken struct {
	ID        string    `db:"id" json:"id"`
	UID       string    `db:"uid" json:"uid"`
	Token     string    `db:"token" json:"token"`
	Platform  string    `db:"platform" json:"platform,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
