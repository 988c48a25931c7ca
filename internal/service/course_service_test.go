package service

import (
	"context"
	"database/sql"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cursova/cursova-api/internal/models"
	"github.com/cursova/cursova-api/internal/repository"
	appErrors "github.com/cursova/cursova-api/pkg/errors"
)

type stubCourseStore struct {
	listCalls int32
	listFn    func(ctx context.Context) ([]models.Course, error)
	findFn    func(ctx context.Context, id string) (*models.Course, error)
	createFn  func(ctx context.Context, course *models.Course) error
	updateFn  func(ctx context.Context, course *models.Course) error
	deleteFn  func(ctx context.Context, id string) error
}

func (s *stubCourseStore) ListActive(ctx context.Context) ([]models.Course, error) {
	atomic.AddInt32(&s.listCalls, 1)
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *stubCourseStore) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if s.findFn != nil {
		return s.findFn(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (s *stubCourseStore) Create(ctx context.Context, course *models.Course) error {
	if s.createFn != nil {
		return s.createFn(ctx, course)
	}
	course.ID = "course-1"
	return nil
}

func (s *stubCourseStore) Update(ctx context.Context, course *models.Course) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, course)
	}
	return nil
}

func (s *stubCourseStore) Delete(ctx context.Context, id string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func newCourseService(store *stubCourseStore) *CourseService {
	cache := NewCacheService(repository.NewMemoryCacheRepository(), nil, time.Minute, zap.NewNop())
	return NewCourseService(store, cache, time.Minute, zap.NewNop())
}

func TestListActiveServesSecondReadFromCache(t *testing.T) {
	store := &stubCourseStore{
		listFn: func(ctx context.Context) ([]models.Course, error) {
			return []models.Course{{ID: "course-1", Slug: "qa-basics", Title: "QA Basics", Active: true}}, nil
		},
	}
	svc := newCourseService(store)

	first, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	second, err := svc.ListActive(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&store.listCalls))
}

func TestListActiveEmptyCatalogIsNotNil(t *testing.T) {
	svc := newCourseService(&stubCourseStore{})

	courses, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, courses)
	assert.Empty(t, courses)
}

func TestCreateCourseInvalidatesCatalogCache(t *testing.T) {
	store := &stubCourseStore{
		listFn: func(ctx context.Context) ([]models.Course, error) {
			return []models.Course{{ID: "course-1", Slug: "qa-basics", Title: "QA Basics", Active: true}}, nil
		},
	}
	svc := newCourseService(store)

	_, err := svc.ListActive(context.Background())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &CourseInput{Slug: "qa-advanced", Title: "QA Advanced", Active: true})
	require.NoError(t, err)

	_, err = svc.ListActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&store.listCalls), "cache should be recomputed after a write")
}

func TestCreateCourseRejectsMissingTitle(t *testing.T) {
	svc := newCourseService(&stubCourseStore{})

	_, err := svc.Create(context.Background(), &CourseInput{Slug: "qa-advanced"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGetCourseBypassesCache(t *testing.T) {
	hits := int32(0)
	store := &stubCourseStore{
		findFn: func(ctx context.Context, id string) (*models.Course, error) {
			atomic.AddInt32(&hits, 1)
			return &models.Course{ID: id, Slug: "qa-basics", Title: "QA Basics"}, nil
		},
	}
	svc := newCourseService(store)

	_, err := svc.Get(context.Background(), "course-1")
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), "course-1")
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestGetCourseNotFound(t *testing.T) {
	svc := newCourseService(&stubCourseStore{})

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUpdateCoursePreservesIdentity(t *testing.T) {
	var updated *models.Course
	store := &stubCourseStore{
		findFn: func(ctx context.Context, id string) (*models.Course, error) {
			return &models.Course{ID: id, Slug: "qa-basics", Title: "QA Basics", DurationWeeks: 6}, nil
		},
		updateFn: func(ctx context.Context, course *models.Course) error {
			updated = course
			return nil
		},
	}
	svc := newCourseService(store)

	out, err := svc.Update(context.Background(), "course-1", &CourseInput{Slug: "qa-basics", Title: "QA Basics II", DurationWeeks: 8})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "course-1", updated.ID)
	assert.Equal(t, "QA Basics II", out.Title)
	assert.Equal(t, 8, out.DurationWeeks)
}

func TestDeleteCourseNotFound(t *testing.T) {
	store := &stubCourseStore{
		deleteFn: func(ctx context.Context, id string) error { return sql.ErrNoRows },
	}
	svc := newCourseService(store)

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
