// Package service orchestrates admission, normalization and provider
// dispatch for each chat request.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/activemirror/beacon-chat/internal/llm"
	"github.com/activemirror/beacon-chat/internal/model"
	"github.com/activemirror/beacon-chat/internal/validation"
	"github.com/activemirror/beacon-chat/pkg/logger"
	"github.com/activemirror/beacon-chat/pkg/metrics"
)

// ErrUnavailable is returned when no provider could answer.
var ErrUnavailable = errors.New("chat service temporarily unavailable")

const (
	recentExhaustions = 20
	notifyTimeout     = 5 * time.Second
)

// Admitter gates requests per client identity.
type Admitter interface {
	Admit(identity string) error
	Tracked() int
}

// Dispatcher produces a reply from the provider chain.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, string, error)
	Health(ctx context.Context) []llm.ProviderStatus
	Names() []string
}

// Notifier delivers operator events out of band.
type Notifier interface {
	Notify(ctx context.Context, event *model.GatewayEvent) error
}

// NopNotifier drops every event.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, *model.GatewayEvent) error { return nil }

// ChatService handles chat requests.
type ChatService struct {
	limiter      Admitter
	normalizer   *validation.Normalizer
	dispatcher   Dispatcher
	notifier     Notifier
	systemPrompt string
	logger       *logger.Logger

	mu          sync.Mutex
	exhaustions []*model.GatewayEvent
}

// NewChatService creates a new chat service.
func NewChatService(
	limiter Admitter,
	normalizer *validation.Normalizer,
	dispatcher Dispatcher,
	notifier Notifier,
	systemPrompt string,
	log *logger.Logger,
) *ChatService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ChatService{
		limiter:      limiter,
		normalizer:   normalizer,
		dispatcher:   dispatcher,
		notifier:     notifier,
		systemPrompt: systemPrompt,
		logger:       log.Named("chat"),
	}
}

// Chat admits, normalizes and dispatches one conversation. Errors are a
// *ratelimit.LimitError, a *validation.Error or ErrUnavailable.
func (s *ChatService) Chat(ctx context.Context, identity string, messages []model.Message) (*model.ChatResponse, error) {
	if err := s.limiter.Admit(identity); err != nil {
		s.logger.Info("request denied by admission control",
			zap.String("client", identity),
			zap.Error(err),
		)
		return nil, err
	}

	conv, err := s.normalizer.Normalize(messages)
	if err != nil {
		var vErr *validation.Error
		if errors.As(err, &vErr) {
			metrics.ValidationRejections.WithLabelValues(string(vErr.Reason)).Inc()
		}
		return nil, err
	}

	req := &llm.CompletionRequest{
		System:   s.systemPrompt,
		Messages: make([]llm.ChatMessage, len(conv)),
	}
	for i, msg := range conv {
		req.Messages[i] = llm.ChatMessage{Role: string(msg.Role), Content: msg.Content}
	}

	// A started backend call is not abandoned when the client goes away.
	resp, provider, err := s.dispatcher.Dispatch(context.WithoutCancel(ctx), req)
	if err != nil {
		s.recordExhaustion(identity, err)
		return nil, ErrUnavailable
	}

	s.logger.Debug("reply produced",
		zap.String("client", identity),
		zap.String("provider", provider),
		zap.Int64("latency_ms", resp.LatencyMs),
	)

	return &model.ChatResponse{
		Reply:     resp.Content,
		Remaining: s.normalizer.MaxTurns - len(conv),
		Provider:  provider,
	}, nil
}

func (s *ChatService) recordExhaustion(identity string, err error) {
	metrics.CascadeExhausted.Inc()

	event := &model.GatewayEvent{
		ID:        uuid.NewString(),
		Type:      model.EventTypeExhausted,
		Client:    identity,
		Reason:    err.Error(),
		CreatedAt: time.Now().UTC(),
	}
	var exhausted *llm.ExhaustedError
	if errors.As(err, &exhausted) {
		for _, f := range exhausted.Failures {
			event.Failures = append(event.Failures, model.ProviderFailure{
				Provider: f.Provider,
				Kind:     string(f.Kind),
				Reason:   f.Err.Error(),
			})
		}
	}

	s.logger.Error("all providers failed",
		zap.String("client", identity),
		zap.Any("failures", event.Failures),
	)

	s.mu.Lock()
	s.exhaustions = append(s.exhaustions, event)
	if len(s.exhaustions) > recentExhaustions {
		s.exhaustions = s.exhaustions[len(s.exhaustions)-recentExhaustions:]
	}
	s.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.Notify(ctx, event); err != nil {
			s.logger.Warn("operator notification failed", zap.Error(err))
		}
	}()
}

// Health returns the advisory provider view.
func (s *ChatService) Health(ctx context.Context) *model.HealthResponse {
	available := []string{}
	for _, status := range s.dispatcher.Health(ctx) {
		if status.Available {
			available = append(available, status.Name)
		}
	}

	primary := "none"
	if len(available) > 0 {
		primary = available[0]
	}

	return &model.HealthResponse{
		Status:    "ok",
		Providers: available,
		Primary:   primary,
	}
}

// Diagnostics returns the operator view: chain order, tracked identities and
// the most recent exhaustion records, newest last.
func (s *ChatService) Diagnostics() *model.DiagnosticsResponse {
	s.mu.Lock()
	recent := make([]*model.GatewayEvent, len(s.exhaustions))
	copy(recent, s.exhaustions)
	s.mu.Unlock()

	return &model.DiagnosticsResponse{
		Chain:             s.dispatcher.Names(),
		TrackedIdentities: s.limiter.Tracked(),
		RecentExhaustions: recent,
	}
}
