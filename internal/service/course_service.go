package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cursova/cursova-api/internal/models"
	appErrors "github.com/cursova/cursova-api/pkg/errors"
)

const courseCachePrefix = "courses:"

// CourseStore is the persistence surface for catalog courses.
type CourseStore interface {
	ListActive(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

// CourseInput is the admin payload for creating or updating a course.
type CourseInput struct {
	Slug          string     `json:"slug" validate:"required,max=120"`
	Title         string     `json:"title" validate:"required,max=200"`
	Description   string     `json:"description"`
	Active        bool       `json:"active"`
	Featured      bool       `json:"featured"`
	StartsAt      *time.Time `json:"startsAt,omitempty"`
	DurationWeeks int        `json:"durationWeeks" validate:"min=0"`
}

// CourseService serves the public catalog through the read-side cache and
// handles admin mutations, which invalidate it.
type CourseService struct {
	store    CourseStore
	cache    *CacheService
	ttl      time.Duration
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCourseService constructs the service.
func NewCourseService(store CourseStore, cache *CacheService, ttl time.Duration, logger *zap.Logger) *CourseService {
	return &CourseService{
		store:    store,
		cache:    cache,
		ttl:      ttl,
		validate: validator.New(),
		logger:   logger,
	}
}

// ListActive returns the public catalog, cached under a single key.
func (s *CourseService) ListActive(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	err := s.cache.GetOrCompute(ctx, courseCachePrefix+"list", &courses, s.ttl, func(ctx context.Context) (interface{}, error) {
		fresh, err := s.store.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		if fresh == nil {
			fresh = []models.Course{}
		}
		return fresh, nil
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list courses")
	}
	return courses, nil
}

// Get returns a course by id, uncached: the admin console needs to see its
// own writes immediately.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}
	return course, nil
}

// Create adds a course and invalidates the catalog cache.
func (s *CourseService) Create(ctx context.Context, input *CourseInput) (*models.Course, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course := &models.Course{
		Slug:          input.Slug,
		Title:         input.Title,
		Description:   input.Description,
		Active:        input.Active,
		Featured:      input.Featured,
		StartsAt:      input.StartsAt,
		DurationWeeks: input.DurationWeeks,
	}
	if err := s.store.Create(ctx, course); err != nil {
		return nil, appErrors.Internal(err, "failed to create course")
	}

	s.cache.Invalidate(ctx, courseCachePrefix)
	s.logger.Info("course created", zap.String("id", course.ID), zap.String("slug", course.Slug))
	return course, nil
}

// Update replaces the mutable fields and invalidates the catalog cache.
func (s *CourseService) Update(ctx context.Context, id string, input *CourseInput) (*models.Course, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	course.Slug = input.Slug
	course.Title = input.Title
	course.Description = input.Description
	course.Active = input.Active
	course.Featured = input.Featured
	course.StartsAt = input.StartsAt
	course.DurationWeeks = input.DurationWeeks

	if err := s.store.Update(ctx, course); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Internal(err, "failed to update course")
	}

	s.cache.Invalidate(ctx, courseCachePrefix)
	return course, nil
}

// Delete removes a course and invalidates the catalog cache.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Internal(err, "failed to delete course")
	}
	s.cache.Invalidate(ctx, courseCachePrefix)
	return nil
}
