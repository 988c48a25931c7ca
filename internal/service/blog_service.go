package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cursova/cursova-api/internal/models"
	appErrors "github.com/cursova/cursova-api/pkg/errors"
)

const blogCachePrefix = "blog:"

// BlogStore is the persistence surface for blog content.
type BlogStore interface {
	ListPublished(ctx context.Context, filter models.BlogFilter) ([]models.BlogPost, int, error)
	FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	CreatePost(ctx context.Context, post *models.BlogPost) error
	ListCategories(ctx context.Context) ([]models.BlogCategory, error)
}

// BlogPostInput is the admin payload for publishing a post.
type BlogPostInput struct {
	Slug       string  `json:"slug" validate:"required,max=160"`
	Title      string  `json:"title" validate:"required,max=200"`
	Excerpt    string  `json:"excerpt" validate:"max=500"`
	Body       string  `json:"body" validate:"required"`
	CategoryID *string `json:"categoryId,omitempty"`
	Featured   bool    `json:"featured"`
	Published  bool    `json:"published"`
}

// BlogPage is one cached page of the public feed.
type BlogPage struct {
	Posts      []models.BlogPost `json:"posts"`
	Pagination models.Pagination `json:"pagination"`
}

// BlogService serves the public blog feed through the read-side cache, keyed
// by the full filter so distinct pages cache independently.
type BlogService struct {
	store    BlogStore
	cache    *CacheService
	ttl      time.Duration
	validate *validator.Validate
	logger   *zap.Logger
}

// NewBlogService constructs the service.
func NewBlogService(store BlogStore, cache *CacheService, ttl time.Duration, logger *zap.Logger) *BlogService {
	return &BlogService{
		store:    store,
		cache:    cache,
		ttl:      ttl,
		validate: validator.New(),
		logger:   logger,
	}
}

func feedCacheKey(filter models.BlogFilter) string {
	featured := "any"
	if filter.Featured != nil {
		featured = fmt.Sprintf("%t", *filter.Featured)
	}
	return fmt.Sprintf("%sfeed:%d:%d:%s:%s", blogCachePrefix, filter.Page, filter.Limit, filter.Category, featured)
}

// ListPublished returns one page of the public feed.
func (s *BlogService) ListPublished(ctx context.Context, filter models.BlogFilter) (*BlogPage, error) {
	var page BlogPage
	err := s.cache.GetOrCompute(ctx, feedCacheKey(filter), &page, s.ttl, func(ctx context.Context) (interface{}, error) {
		posts, total, err := s.store.ListPublished(ctx, filter)
		if err != nil {
			return nil, err
		}
		if posts == nil {
			posts = []models.BlogPost{}
		}
		size := filter.Limit
		if size <= 0 || size > 50 {
			size = 10
		}
		current := filter.Page
		if current < 1 {
			current = 1
		}
		return &BlogPage{
			Posts:      posts,
			Pagination: models.Pagination{Page: current, PageSize: size, TotalCount: total},
		}, nil
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list blog posts")
	}
	return &page, nil
}

// GetBySlug returns one published post with its body, cached per slug.
func (s *BlogService) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	err := s.cache.GetOrCompute(ctx, blogCachePrefix+"post:"+slug, &post, s.ttl, func(ctx context.Context) (interface{}, error) {
		return s.store.FindBySlug(ctx, slug)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return nil, appErrors.Internal(err, "failed to load post")
	}
	return &post, nil
}

// ListCategories returns all categories, cached.
func (s *BlogService) ListCategories(ctx context.Context) ([]models.BlogCategory, error) {
	var categories []models.BlogCategory
	err := s.cache.GetOrCompute(ctx, blogCachePrefix+"categories", &categories, s.ttl, func(ctx context.Context) (interface{}, error) {
		fresh, err := s.store.ListCategories(ctx)
		if err != nil {
			return nil, err
		}
		if fresh == nil {
			fresh = []models.BlogCategory{}
		}
		return fresh, nil
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list categories")
	}
	return categories, nil
}

// CreatePost publishes a post and invalidates every cached feed page.
func (s *BlogService) CreatePost(ctx context.Context, input *BlogPostInput) (*models.BlogPost, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid post payload")
	}

	post := &models.BlogPost{
		Slug:       input.Slug,
		Title:      input.Title,
		Excerpt:    input.Excerpt,
		Body:       input.Body,
		CategoryID: input.CategoryID,
		Featured:   input.Featured,
		Published:  input.Published,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, appErrors.Internal(err, "failed to create post")
	}

	s.cache.Invalidate(ctx, blogCachePrefix)
	s.logger.Info("blog post created", zap.String("id", post.ID), zap.String("slug", post.Slug))
	return post, nil
}
