package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/cursova/cursova-api/pkg/config"
)

// Sender delivers push notifications to registered device tokens.
type Sender interface {
	Send(ctx context.Context, note Notification) error
}

// Notification is a single push message fanned out to device tokens.
type Notification struct {
	Tokens []string `json:"registration_ids"`
	Title  string   `json:"-"`
	Body   string   `json:"-"`
}

type fcmPayload struct {
	RegistrationIDs []string `json:"registration_ids"`
	Notification    struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	} `json:"notification"`
}

// FCMSender posts notifications to the FCM HTTP endpoint.
type FCMSender struct {
	cfg    config.PushConfig
	client *http.Client
	logger *zap.Logger
}

// NewFCMSender constructs the sender.
func NewFCMSender(cfg config.PushConfig, logger *zap.Logger) *FCMSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FCMSender{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Send posts the notification. Disabled senders drop silently so push stays
// optional per environment.
func (s *FCMSender) Send(ctx context.Context, note Notification) error {
	if !s.cfg.Enabled {
		s.logger.Sugar().Debugw("push disabled, dropping notification", "title", note.Title)
		return nil
	}
	if len(note.Tokens) == 0 {
		return nil
	}

	payload := fcmPayload{RegistrationIDs: note.Tokens}
	payload.Notification.Title = note.Title
	payload.Notification.Body = note.Body

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+s.cfg.ServerKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post push notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("push endpoint returned %d", resp.StatusCode)
	}
	return nil
}
