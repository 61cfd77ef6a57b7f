package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/activemirror/beacon-chat/internal/model"
)

type fakePublisher struct {
	subject string
	payload []byte
	opts    int
	err     error
}

func (p *fakePublisher) Publish(_ context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	p.subject = subject
	p.payload = payload
	p.opts = len(opts)
	if p.err != nil {
		return nil, p.err
	}
	return &jetstream.PubAck{Stream: StreamName, Sequence: 1}, nil
}

func TestEventNotifier_Publishes(t *testing.T) {
	pub := &fakePublisher{}
	notifier := NewEventNotifier(pub, "")

	event := &model.GatewayEvent{
		ID:     "e-1",
		Type:   model.EventTypeExhausted,
		Client: "1.2.3.4",
		Failures: []model.ProviderFailure{
			{Provider: "groq", Kind: "unconfigured", Reason: "no api key"},
		},
		CreatedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}

	require.NoError(t, notifier.Notify(context.Background(), event))

	assert.Equal(t, "beacon.chat.events.providers_exhausted", pub.subject)
	assert.Equal(t, 1, pub.opts)

	var decoded model.GatewayEvent
	require.NoError(t, json.Unmarshal(pub.payload, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, event.Failures, decoded.Failures)
	assert.True(t, event.CreatedAt.Equal(decoded.CreatedAt))
}

func TestEventNotifier_PublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("no responders")}
	notifier := NewEventNotifier(pub, "ops.beacon")

	err := notifier.Notify(context.Background(), &model.GatewayEvent{ID: "e-2", Type: model.EventTypeExhausted})

	require.Error(t, err)
	assert.ErrorIs(t, err, pub.err)
	assert.Equal(t, "ops.beacon.providers_exhausted", pub.subject)
}
