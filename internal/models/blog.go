package models

import "time"

// BlogCategory groups posts on the public feed.
type BlogCategory struct {
	ID   string `db:"id" json:"id"`
	Slug string `db:"slug" json:"slug"`
	Name string `db:"name" json:"name"`
}

// BlogPost is a content entry on the public blog.
type BlogPost struct {
	ID           string     `db:"id" json:"id"`
	Slug         string     `db:"slug" json:"slug"`
	Title        string     `db:"title" json:"title"`
	Excerpt      string     `db:"excerpt" json:"excerpt"`
	Body         string     `db:"body" json:"body,omitempty"`
	CategoryID   *string    `db:"category_id" json:"categoryId,omitempty"`
	CategorySlug *string    `db:"category_slug" json:"category,omitempty"`
	Featured     bool       `db:"featured" json:"featured"`
	Published    bool       `db:"published" json:"-"`
	PublishedAt  *time.Time `db:"published_at" json:"publishedAt,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// BlogFilter is the composite query key for the public feed.
type BlogFilter struct {
	Page     int
	Limit    int
	Category string
	Featured *bool
}
