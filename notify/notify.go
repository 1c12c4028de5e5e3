// Package notify delivers human readable messages about what seedkeeper did
// to the operator: log lines, push notifications or both.
package notify

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Source is attached to every message emitted by seedkeeper
const Source = "qbittorrent"

// Category classifies a message
type Category string

const (
	CategoryError  Category = "error"
	CategoryInfo   Category = "info"
	CategoryAdd    Category = "add"
	CategoryRemove Category = "remove"
)

// Message is a single notification
type Message struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Category Category `json:"category"`
	Source   string   `json:"source"`
}

// NewMessage creates a message with a fresh id
func NewMessage(category Category, text string) Message {
	return Message{
		ID:       uuid.NewString(),
		Text:     text,
		Category: category,
		Source:   Source,
	}
}

// Title returns a short heading for the message
func (m Message) Title() string {
	switch m.Category {
	case CategoryError:
		return "seedkeeper error"
	case CategoryAdd:
		return "Torrent added"
	case CategoryRemove:
		return "Torrent removed"
	default:
		return "seedkeeper"
	}
}

// Sink receives notifications
type Sink interface {
	Notify(ctx context.Context, msg Message) error
}

// Multi fans a message out to several sinks
type Multi []Sink

// Notify sends msg to every sink and joins the errors
func (m Multi) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Send builds a message and delivers it to sink
func Send(ctx context.Context, sink Sink, category Category, text string) error {
	if sink == nil {
		return nil
	}
	return sink.Notify(ctx, NewMessage(category, text))
}
