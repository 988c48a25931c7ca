package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cursova/cursova-api/internal/models"
	appErrors "github.com/cursova/cursova-api/pkg/errors"
	"github.com/cursova/cursova-api/pkg/export"
)

// RegistrationStore is the persistence surface the service needs.
type RegistrationStore interface {
	Create(ctx context.Context, reg *models.Registration) error
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, error)
	FindByID(ctx context.Context, id string) (*models.Registration, error)
	Transition(ctx context.Context, id string, status models.RegistrationStatus, message *string, now time.Time) (*models.TransitionResult, error)
	Delete(ctx context.Context, id string) error
}

// RegistrationNotifier receives moderation-decision notifications.
type RegistrationNotifier interface {
	NotifyRegistrationStatus(note models.RegistrationStatusNotification)
}

// ExportFile is a rendered export ready for download.
type ExportFile struct {
	ContentType string
	Filename    string
	Bytes       []byte
}

// RegistrationService implements the course-registration moderation flow:
// public submission, admin listing, status transitions with append-only
// history, deletion and export.
type RegistrationService struct {
	store    RegistrationStore
	notifier RegistrationNotifier
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
	now      func() time.Time
}

// NewRegistrationService constructs the service.
func NewRegistrationService(store RegistrationStore, notifier RegistrationNotifier, logger *zap.Logger) *RegistrationService {
	return &RegistrationService{
		store:    store,
		notifier: notifier,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		now:      time.Now,
	}
}

// Submit accepts an arbitrary JSON object as the registration payload. The
// whole payload is preserved verbatim; name, email and course are lifted out
// when present so lists and notifications do not have to parse the blob.
func (s *RegistrationService) Submit(ctx context.Context, payload json.RawMessage) (*models.Registration, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, appErrors.Clone(appErrors.ErrValidation, "registration payload must be a JSON object")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "registration payload must be a JSON object")
	}

	reg := &models.Registration{
		Name:    stringField(fields, "name"),
		Email:   stringField(fields, "email"),
		Course:  stringField(fields, "course"),
		Answers: append([]byte(nil), trimmed...),
		Status:  models.RegistrationStatusPending,
	}

	if err := s.store.Create(ctx, reg); err != nil {
		return nil, appErrors.Internal(err, "failed to store registration")
	}

	s.logger.Info("registration submitted",
		zap.String("id", reg.ID),
		zap.String("course", reg.Course))
	return reg, nil
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return value
}

// List returns registrations newest first, optionally filtered by status.
func (s *RegistrationService) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, error) {
	if filter.Status != "" && !models.ValidRegistrationStatus(filter.Status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", filter.Status))
	}
	registrations, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list registrations")
	}
	if registrations == nil {
		registrations = []models.Registration{}
	}
	return registrations, nil
}

// Get returns one registration with its full status history.
func (s *RegistrationService) Get(ctx context.Context, id string) (*models.Registration, error) {
	reg, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Internal(err, "failed to load registration")
	}
	return reg, nil
}

// TransitionStatus moves a registration to a new status, appending to its
// history. Approved and rejected decisions that carry a message notify the
// applicant asynchronously; the transition itself never waits on delivery.
func (s *RegistrationService) TransitionStatus(ctx context.Context, id string, status models.RegistrationStatus, message *string) (*models.TransitionResult, error) {
	if !models.ValidRegistrationStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", status))
	}

	reg, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Internal(err, "failed to load registration")
	}

	result, err := s.store.Transition(ctx, id, status, message, s.now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Internal(err, "failed to transition registration")
	}

	decided := status == models.RegistrationStatusApproved || status == models.RegistrationStatusRejected
	if decided && message != nil && *message != "" && reg.Email != "" {
		s.notifier.NotifyRegistrationStatus(models.RegistrationStatusNotification{
			Email:   reg.Email,
			Name:    reg.Name,
			Course:  reg.Course,
			Status:  status,
			Message: *message,
		})
	}

	s.logger.Info("registration transitioned",
		zap.String("id", id),
		zap.String("status", string(status)))
	return result, nil
}

// Delete removes a registration and its history.
func (s *RegistrationService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return appErrors.Internal(err, "failed to delete registration")
	}
	return nil
}

// Export renders the current registration list in the requested format.
func (s *RegistrationService) Export(ctx context.Context, format string, filter models.RegistrationFilter) (*ExportFile, error) {
	registrations, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"ID", "Name", "Email", "Course", "Status", "Submitted"},
	}
	for _, reg := range registrations {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":        reg.ID,
			"Name":      reg.Name,
			"Email":     reg.Email,
			"Course":    reg.Course,
			"Status":    string(reg.Status),
			"Submitted": reg.CreatedAt.Format(time.RFC3339),
		})
	}

	stamp := s.now().UTC().Format("20060102-150405")
	switch format {
	case "csv":
		raw, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to export registrations")
		}
		return &ExportFile{
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("registrations-%s.csv", stamp),
			Bytes:       raw,
		}, nil
	case "pdf":
		raw, err := s.pdf.Render(dataset, "Registrations")
		if err != nil {
			return nil, appErrors.Internal(err, "failed to export registrations")
		}
		return &ExportFile{
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("registrations-%s.pdf", stamp),
			Bytes:       raw,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
