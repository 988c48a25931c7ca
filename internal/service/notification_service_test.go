package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cursova/cursova-api/internal/models"
	"github.com/cursova/cursova-api/pkg/config"
	"github.com/cursova/cursova-api/pkg/jobs"
	"github.com/cursova/cursova-api/pkg/mailer"
	"github.com/cursova/cursova-api/pkg/push"
)

type recordingMailer struct {
	mu       sync.Mutex
	messages []mailer.Message
	err      error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *recordingMailer) sent() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.messages...)
}

type recordingPusher struct {
	notes []push.Notification
}

func (p *recordingPusher) Send(_ context.Context, note push.Notification) error {
	p.notes = append(p.notes, note)
	return nil
}

type staticTokenStore struct {
	tokens []string
}

func (s *staticTokenStore) ListByRole(_ context.Context, _ models.UserRole) ([]string, error) {
	return s.tokens, nil
}

func newNotificationFixture(enabled bool) (*NotificationService, *recordingMailer, *recordingPusher) {
	mail := &recordingMailer{}
	pusher := &recordingPusher{}
	svc := NewNotificationService(config.NotificationConfig{
		Enabled:    enabled,
		Workers:    1,
		BufferSize: 8,
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	}, mail, pusher, &staticTokenStore{tokens: []string{"device-1", "device-2"}}, NewMetricsService(), zap.NewNop())
	return svc, mail, pusher
}

func TestHandleRegistrationStatusSendsMailAndPush(t *testing.T) {
	svc, mail, pusher := newNotificationFixture(true)

	err := svc.handle(context.Background(), jobs.Job{
		Type: models.NotificationTypeRegistrationStatus,
		Payload: models.RegistrationStatusNotification{
			Email:   "olena@example.com",
			Name:    "Olena",
			Course:  "Go 101",
			Status:  models.RegistrationStatusApproved,
			Message: "Welcome aboard",
		},
	})
	require.NoError(t, err)

	require.Len(t, mail.messages, 1)
	assert.Equal(t, "olena@example.com", mail.messages[0].To)
	assert.Contains(t, mail.messages[0].Subject, "approved")
	assert.Contains(t, mail.messages[0].HTML, "Welcome aboard")

	require.Len(t, pusher.notes, 1)
	assert.Equal(t, []string{"device-1", "device-2"}, pusher.notes[0].Tokens)
}

func TestHandleRegistrationStatusEscapesHTML(t *testing.T) {
	svc, mail, _ := newNotificationFixture(true)

	err := svc.handle(context.Background(), jobs.Job{
		Type: models.NotificationTypeRegistrationStatus,
		Payload: models.RegistrationStatusNotification{
			Email:   "x@example.com",
			Name:    "<script>alert(1)</script>",
			Course:  "Go 101",
			Status:  models.RegistrationStatusRejected,
			Message: "try <again>",
		},
	})
	require.NoError(t, err)

	require.Len(t, mail.messages, 1)
	assert.NotContains(t, mail.messages[0].HTML, "<script>")
	assert.Contains(t, mail.messages[0].HTML, "&lt;script&gt;")
	assert.Contains(t, mail.messages[0].HTML, "try &lt;again&gt;")
}

func TestHandleInvitationSendsLinks(t *testing.T) {
	svc, mail, pusher := newNotificationFixture(true)

	err := svc.handle(context.Background(), jobs.Job{
		Type: models.NotificationTypeInvitation,
		Payload: models.InvitationNotification{
			Email:            "new@example.com",
			DisplayName:      "New Person",
			VerificationLink: "https://app.cursova.dev/onboarding/verify-email?code=abc",
			PasswordLink:     "https://app.cursova.dev/onboarding/set-password?code=def",
		},
	})
	require.NoError(t, err)

	require.Len(t, mail.messages, 1)
	assert.Contains(t, mail.messages[0].HTML, "verify-email?code=abc")
	assert.Contains(t, mail.messages[0].HTML, "set-password?code=def")
	assert.Empty(t, pusher.notes)
}

func TestHandlePropagatesMailFailureForRetry(t *testing.T) {
	svc, mail, _ := newNotificationFixture(true)
	mail.err = fmt.Errorf("smtp down")

	err := svc.handle(context.Background(), jobs.Job{
		Type:    models.NotificationTypeInvitation,
		Payload: models.InvitationNotification{Email: "x@example.com"},
	})
	require.Error(t, err)
}

func TestHandleUnknownTypeIsDropped(t *testing.T) {
	svc, mail, _ := newNotificationFixture(true)

	err := svc.handle(context.Background(), jobs.Job{Type: "mystery", Payload: nil})
	require.NoError(t, err)
	assert.Empty(t, mail.messages)
}

func TestQueueDeliversEnqueuedNotification(t *testing.T) {
	svc, mail, _ := newNotificationFixture(true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc.Start(ctx)
	defer svc.Stop()

	svc.NotifyInvitation(models.InvitationNotification{
		Email:       "queued@example.com",
		DisplayName: "Queued",
	})

	require.Eventually(t, func() bool {
		return len(mail.sent()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "queued@example.com", mail.sent()[0].To)
}

func TestDisabledServiceDropsSilently(t *testing.T) {
	svc, mail, _ := newNotificationFixture(false)

	// No Start: a disabled service must not touch the queue at all.
	svc.NotifyInvitation(models.InvitationNotification{Email: "dropped@example.com"})
	assert.Empty(t, mail.messages)
}
