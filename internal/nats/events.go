package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/activemirror/beacon-chat/internal/model"
)

const (
	// StreamName is the name of the gateway events stream.
	StreamName = "BEACON_EVENTS"

	// DefaultSubjectPrefix is the prefix for all gateway event subjects.
	DefaultSubjectPrefix = "beacon.chat.events"
)

// Publisher is the subset of jetstream.JetStream used to emit events.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// EventNotifier publishes gateway events to JetStream.
type EventNotifier struct {
	js     Publisher
	prefix string
}

// NewEventNotifier creates a notifier publishing under prefix.
func NewEventNotifier(js Publisher, prefix string) *EventNotifier {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &EventNotifier{js: js, prefix: prefix}
}

// EventSubject returns the subject for an event type.
func EventSubject(prefix string, eventType model.EventType) string {
	return fmt.Sprintf("%s.%s", prefix, eventType)
}

// EnsureStream ensures the events stream exists.
func EnsureStream(ctx context.Context, js jetstream.JetStream, prefix string) error {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}

	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{prefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      7 * 24 * time.Hour,
		MaxBytes:    64 * 1024 * 1024,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Operator events from the chat gateway",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// Notify publishes event and waits for the stream acknowledgement. The event
// ID is used as the message ID so redelivered publishes are deduplicated.
func (n *EventNotifier) Notify(ctx context.Context, event *model.GatewayEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := EventSubject(n.prefix, event.Type)
	if _, err := n.js.Publish(ctx, subject, data, jetstream.WithMsgID(event.ID)); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
