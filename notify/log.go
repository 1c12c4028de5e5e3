package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSink writes notifications to a zerolog logger
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a sink that logs every message
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("component", "notify").Logger()}
}

// Notify logs msg, errors at error level and everything else at info
func (s *LogSink) Notify(_ context.Context, msg Message) error {
	event := s.logger.Info()
	if msg.Category == CategoryError {
		event = s.logger.Error()
	}

	event.
		Str("id", msg.ID).
		Str("category", string(msg.Category)).
		Str("source", msg.Source).
		Msg(msg.Text)
	return nil
}
