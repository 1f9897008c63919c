package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go/compress"

	"fakeam/internal/config"
	"fakeam/internal/events"
	"fakeam/internal/models"
)

func TestNewProducerValidation(t *testing.T) {
	if _, err := NewProducer(config.EventsConfig{Topic: "t"}); err == nil {
		t.Error("expected error without brokers")
	}
	if _, err := NewProducer(config.EventsConfig{Brokers: []string{"localhost:9092"}}); err == nil {
		t.Error("expected error without topic")
	}
}

func TestNewProducerPoolSize(t *testing.T) {
	p, err := NewProducer(config.EventsConfig{
		Brokers:  []string{"localhost:9092"},
		Topic:    "t",
		PoolSize: 3,
	})
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}
	defer p.Close()

	if len(p.writers) != 3 || cap(p.pool) != 3 {
		t.Errorf("expected pool of 3, got %d writers, cap %d", len(p.writers), cap(p.pool))
	}
}

func TestGetCompression(t *testing.T) {
	tests := []struct {
		name string
		want compress.Compression
	}{
		{"gzip", compress.Gzip},
		{"snappy", compress.Snappy},
		{"lz4", compress.Lz4},
		{"zstd", compress.Zstd},
		{"", compress.None},
		{"unknown", compress.None},
	}
	for _, tt := range tests {
		if got := getCompression(tt.name); got != tt.want {
			t.Errorf("getCompression(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestToMessage(t *testing.T) {
	at := models.NewTime(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	ev := &events.Event{
		Type: events.TypeAlertResolved,
		At:   at,
		Alert: &models.Alert{
			Fingerprint: "abc123",
		},
	}

	msg, err := toMessage(ev)
	if err != nil {
		t.Fatalf("toMessage: %v", err)
	}
	if string(msg.Key) != "abc123" {
		t.Errorf("expected fingerprint key, got %q", msg.Key)
	}
	if !msg.Time.Equal(at.Time) {
		t.Errorf("expected message time %v, got %v", at.Time, msg.Time)
	}
	if len(msg.Headers) != 1 || msg.Headers[0].Key != "event_type" ||
		string(msg.Headers[0].Value) != "alert.resolved" {
		t.Errorf("unexpected headers %+v", msg.Headers)
	}

	var decoded events.Event
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("payload not valid JSON: %v", err)
	}
	if decoded.Type != events.TypeAlertResolved {
		t.Errorf("round-tripped type %s", decoded.Type)
	}
}

func TestToMessageSilenceKey(t *testing.T) {
	ev := &events.Event{
		Type:      events.TypeSilenceDeleted,
		At:        models.NewTime(time.Now()),
		SilenceID: "sil-9",
	}
	msg, err := toMessage(ev)
	if err != nil {
		t.Fatalf("toMessage: %v", err)
	}
	if string(msg.Key) != "sil-9" {
		t.Errorf("expected silence id key, got %q", msg.Key)
	}
}

func TestPublishAfterClose(t *testing.T) {
	p, err := NewProducer(config.EventsConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "t",
	})
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ev := &events.Event{Type: events.TypeAlertCreated, At: models.NewTime(time.Now())}
	if err := p.Publish(context.Background(), ev); err != ErrProducerClosed {
		t.Errorf("expected ErrProducerClosed, got %v", err)
	}
	// double close is a no-op
	if err := p.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
