package domain

import "context"

// HistoryStore persists one opaque history blob per key. It mirrors a
// browser key/value storage: whole values are read and written at once.
type HistoryStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// EventSink receives history events after they are persisted.
type EventSink interface {
	Publish(ev HistoryEvent)
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) Publish(HistoryEvent) {}
