package events

import (
	"context"

	"fakeam/internal/models"
)

// Type names a lifecycle event emitted by the store.
type Type string

const (
	TypeAlertCreated      Type = "alert.created"
	TypeAlertUpdated      Type = "alert.updated"
	TypeAlertResolved     Type = "alert.resolved"
	TypeAlertSuppressed   Type = "alert.suppressed"
	TypeAlertUnsuppressed Type = "alert.unsuppressed"
	TypeAlertDeleted      Type = "alert.deleted"
	TypeSilenceCreated    Type = "silence.created"
	TypeSilenceUpdated    Type = "silence.updated"
	TypeSilenceExpired    Type = "silence.expired"
	TypeSilenceDeleted    Type = "silence.deleted"
)

// Event is one lifecycle change, published to downstream pipeline tests.
// Alert and Silence are deep copies taken under the store lock.
type Event struct {
	Type      Type            `json:"type"`
	At        models.Time     `json:"at"`
	Alert     *models.Alert   `json:"alert,omitempty"`
	Silence   *models.Silence `json:"silence,omitempty"`
	SilenceID string          `json:"silenceID,omitempty"`
}

// Key returns the partition key for the event: the alert fingerprint or
// the silence id, so per-entity ordering survives partitioning.
func (e *Event) Key() string {
	if e.Alert != nil {
		return e.Alert.Fingerprint
	}
	if e.Silence != nil {
		return e.Silence.ID
	}
	return e.SilenceID
}

// Publisher delivers events to an external sink.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	PublishBatch(ctx context.Context, events []*Event) error
	Close() error
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that discards all events. Used when
// no event stream is configured.
func NewNoopPublisher() Publisher { return &noopPublisher{} }

func (n *noopPublisher) Publish(ctx context.Context, event *Event) error         { return nil }
func (n *noopPublisher) PublishBatch(ctx context.Context, events []*Event) error { return nil }
func (n *noopPublisher) Close() error                                            { return nil }
