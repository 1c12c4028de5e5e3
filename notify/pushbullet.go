package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/xconstruct/go-pushbullet"
)

type pusher interface {
	PushNote(iden string, title, body string) error
}

// PushbulletSink pushes notes to Pushbullet devices
type PushbulletSink struct {
	pb     pusher
	client *pushbullet.Client
	device string
	logger zerolog.Logger
}

// NewPushbulletSink creates a sink for the given API key. An empty device
// pushes to all of the account's devices.
func NewPushbulletSink(apiKey, device string, logger zerolog.Logger) *PushbulletSink {
	pb := pushbullet.New(apiKey)
	return &PushbulletSink{
		pb:     pb,
		client: pb,
		device: device,
		logger: logger.With().Str("component", "pushbullet").Logger(),
	}
}

// Notify pushes msg as a note
func (s *PushbulletSink) Notify(_ context.Context, msg Message) error {
	if err := s.pb.PushNote(s.device, msg.Title(), msg.Text); err != nil {
		s.logger.Error().Err(err).Str("id", msg.ID).Msg("Error sending Pushbullet notification")
		return fmt.Errorf("failed to push note: %w", err)
	}
	return nil
}

// Test verifies the API key by fetching the account
func (s *PushbulletSink) Test() error {
	if s.client == nil {
		return nil
	}
	if _, err := s.client.Me(); err != nil {
		return fmt.Errorf("pushbullet authentication failed: %w", err)
	}
	return nil
}
