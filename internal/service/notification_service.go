package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cursova/cursova-api/internal/models"
	"github.com/cursova/cursova-api/pkg/config"
	"github.com/cursova/cursova-api/pkg/jobs"
	"github.com/cursova/cursova-api/pkg/mailer"
	"github.com/cursova/cursova-api/pkg/push"
)

// DeviceTokenStore returns push tokens for a role-based fan-out.
type DeviceTokenStore interface {
	ListByRole(ctx context.Context, role models.UserRole) ([]string, error)
}

// NotificationService dispatches transactional email and push messages
// through a background queue. Producers never block on delivery and never
// see delivery errors; failures are retried by the queue and logged.
type NotificationService struct {
	queue   *jobs.Queue
	mail    mailer.Sender
	push    push.Sender
	tokens  DeviceTokenStore
	metrics *MetricsService
	enabled bool
	logger  *zap.Logger
}

// NewNotificationService constructs the service and its queue. Start must be
// called before producers enqueue.
func NewNotificationService(cfg config.NotificationConfig, mail mailer.Sender, pushSender push.Sender, tokens DeviceTokenStore, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	s := &NotificationService{
		mail:    mail,
		push:    pushSender,
		tokens:  tokens,
		metrics: metrics,
		enabled: cfg.Enabled,
		logger:  logger,
	}
	s.queue = jobs.NewQueue("notifications", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches queue workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// NotifyRegistrationStatus enqueues a moderation-decision notification. The
// error is deliberately swallowed into logs: a transition must never fail or
// slow down because mail could not be queued.
func (s *NotificationService) NotifyRegistrationStatus(note models.RegistrationStatusNotification) {
	s.enqueue(models.NotificationTypeRegistrationStatus, note)
}

// NotifyInvitation enqueues an onboarding invitation email.
func (s *NotificationService) NotifyInvitation(note models.InvitationNotification) {
	s.enqueue(models.NotificationTypeInvitation, note)
}

func (s *NotificationService) enqueue(jobType string, payload interface{}) {
	if !s.enabled {
		s.logger.Sugar().Debugw("notifications disabled, dropping", "type", jobType)
		return
	}
	job := jobs.Job{ID: uuid.NewString(), Type: jobType, Payload: payload}
	if err := s.queue.Enqueue(job); err != nil {
		s.metrics.RecordNotification(jobType, false)
		s.logger.Sugar().Errorw("failed to enqueue notification", "type", jobType, "error", err)
	}
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	var err error
	switch job.Type {
	case models.NotificationTypeRegistrationStatus:
		note, ok := job.Payload.(models.RegistrationStatusNotification)
		if !ok {
			return fmt.Errorf("unexpected payload for %s", job.Type)
		}
		err = s.sendRegistrationStatus(ctx, note)
	case models.NotificationTypeInvitation:
		note, ok := job.Payload.(models.InvitationNotification)
		if !ok {
			return fmt.Errorf("unexpected payload for %s", job.Type)
		}
		err = s.sendInvitation(ctx, note)
	default:
		s.logger.Sugar().Warnw("unknown notification type", "type", job.Type)
		return nil
	}

	s.metrics.RecordNotification(job.Type, err == nil)
	return err
}

func (s *NotificationService) sendRegistrationStatus(ctx context.Context, note models.RegistrationStatusNotification) error {
	subject := fmt.Sprintf("Your registration for %s was %s", note.Course, note.Status)

	var body strings.Builder
	fmt.Fprintf(&body, "<p>Hi %s,</p>", html.EscapeString(note.Name))
	fmt.Fprintf(&body, "<p>Your registration for <strong>%s</strong> has been <strong>%s</strong>.</p>",
		html.EscapeString(note.Course), note.Status)
	if note.Message != "" {
		fmt.Fprintf(&body, "<blockquote>%s</blockquote>", html.EscapeString(note.Message))
	}
	body.WriteString("<p>Cursova team</p>")

	if err := s.mail.Send(ctx, mailer.Message{To: note.Email, Subject: subject, HTML: body.String()}); err != nil {
		return err
	}

	// Back-office devices get a heads-up so moderators see decisions land.
	s.pushToAdmins(ctx, "Registration "+string(note.Status), fmt.Sprintf("%s — %s", note.Name, note.Course))
	return nil
}

func (s *NotificationService) sendInvitation(ctx context.Context, note models.InvitationNotification) error {
	subject := "You have been invited to Cursova"

	var body strings.Builder
	fmt.Fprintf(&body, "<p>Hi %s,</p>", html.EscapeString(note.DisplayName))
	body.WriteString("<p>An account has been created for you. Finish setting it up:</p>")
	fmt.Fprintf(&body, `<p><a href="%s">Verify your email address</a></p>`, note.VerificationLink)
	fmt.Fprintf(&body, `<p><a href="%s">Set your password</a></p>`, note.PasswordLink)
	body.WriteString("<p>The links expire after seven days.</p>")

	return s.mail.Send(ctx, mailer.Message{To: note.Email, Subject: subject, HTML: body.String()})
}

func (s *NotificationService) pushToAdmins(ctx context.Context, title, body string) {
	tokens, err := s.tokens.ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		s.logger.Sugar().Warnw("failed to list admin device tokens", "error", err)
		return
	}
	if len(tokens) == 0 {
		return
	}
	if err := s.push.Send(ctx, push.Notification{Tokens: tokens, Title: title, Body: body}); err != nil {
		s.logger.Sugar().Warnw("failed to push to admin devices", "error", err)
	}
}
