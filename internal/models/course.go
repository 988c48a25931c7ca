package models

import "time"

// Course is a catalog entry shown on the public site.
type Course struct {
	ID            string     `db:"id" json:"id"`
	Slug          string     `db:"slug" json:"slug"`
	Title         string     `db:"title" json:"title"`
	Description   string     `db:"description" json:"description"`
	Active        bool       `db:"active" json:"active"`
	Featured      bool       `db:"featured" json:"featured"`
	StartsAt      *time.Time `db:"starts_at" json:"startsAt,omitempty"`
	DurationWeeks int        `db:"duration_weeks" json:"durationWeeks"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}
