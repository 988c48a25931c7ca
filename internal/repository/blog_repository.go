package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cursova/cursova-api/internal/models"
)

// BlogRepository handles persistence of blog posts and categories.
type BlogRepository struct {
	db *sqlx.DB
}

// NewBlogRepository constructs the repository.
func NewBlogRepository(db *sqlx.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

// ListPublished returns the public feed page described by the filter.
func (r *BlogRepository) ListPublished(ctx context.Context, filter models.BlogFilter) ([]models.BlogPost, int, error) {
	base := `FROM blog_posts p LEFT JOIN blog_categories c ON c.id = p.category_id`
	conditions := []string{"p.published = TRUE"}
	var args []interface{}

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("c.slug = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.Featured != nil {
		conditions = append(conditions, fmt.Sprintf("p.featured = $%d", len(args)+1))
		args = append(args, *filter.Featured)
	}
	clause := " WHERE " + strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf(`SELECT p.id, p.slug, p.title, p.excerpt, p.category_id, c.slug AS category_slug,
        p.featured, p.published, p.published_at, p.created_at, p.updated_at
        %s ORDER BY p.published_at DESC LIMIT %d OFFSET %d`, base+clause, limit, offset)

	var posts []models.BlogPost
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list blog posts: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count blog posts: %w", err)
	}
	return posts, total, nil
}

// FindBySlug returns one published post including its body.
func (r *BlogRepository) FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	const query = `SELECT p.id, p.slug, p.title, p.excerpt, p.body, p.category_id, c.slug AS category_slug,
        p.featured, p.published, p.published_at, p.created_at, p.updated_at
        FROM blog_posts p LEFT JOIN blog_categories c ON c.id = p.category_id
        WHERE p.slug = $1 AND p.published = TRUE`
	var post models.BlogPost
	if err := r.db.GetContext(ctx, &post, query, slug); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost persists a new post.
func (r *BlogRepository) CreatePost(ctx context.Context, post *models.BlogPost) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Published && post.PublishedAt == nil {
		post.PublishedAt = &now
	}
	const query = `INSERT INTO blog_posts (id, slug, title, excerpt, body, category_id, featured, published, published_at, created_at, updated_at)
        VALUES (:id, :slug, :title, :excerpt, :body, :category_id, :featured, :published, :published_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("create blog post: %w", err)
	}
	return nil
}

// ListCategories returns all categories.
func (r *BlogRepository) ListCategories(ctx context.Context) ([]models.BlogCategory, error) {
	var categories []models.BlogCategory
	if err := r.db.SelectContext(ctx, &categories, `SELECT id, slug, name FROM blog_categories ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list blog categories: %w", err)
	}
	return categories, nil
}
