package llm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/activemirror/beacon-chat/pkg/logger"
	"github.com/activemirror/beacon-chat/pkg/metrics"
)

const tracerName = "github.com/activemirror/beacon-chat/internal/llm"

// ProviderStatus is one entry of the advisory health view.
type ProviderStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// Cascade tries an ordered chain of providers; the first success wins.
// The chain is fixed at construction.
type Cascade struct {
	clients []Client
	logger  *logger.Logger
	tracer  trace.Tracer
}

// NewCascade creates a cascade over clients in the given order.
func NewCascade(log *logger.Logger, clients ...Client) *Cascade {
	if log == nil {
		log = logger.NewNop()
	}
	chain := make([]Client, len(clients))
	copy(chain, clients)
	return &Cascade{
		clients: chain,
		logger:  log.Named("cascade"),
		tracer:  otel.Tracer(tracerName),
	}
}

// Names returns provider names in cascade order.
func (c *Cascade) Names() []string {
	names := make([]string, len(c.clients))
	for i, client := range c.clients {
		names[i] = client.Name()
	}
	return names
}

// Dispatch attempts each provider once, in order, and returns the first
// non-empty reply with the name of the provider that produced it. When every
// provider fails it returns an *ExhaustedError holding each failure.
func (c *Cascade) Dispatch(ctx context.Context, req *CompletionRequest) (*CompletionResponse, string, error) {
	ctx, span := c.tracer.Start(ctx, "cascade.dispatch",
		trace.WithAttributes(attribute.Int("cascade.length", len(c.clients))),
	)
	defer span.End()

	var failures []*ProviderError
	for _, client := range c.clients {
		resp, err := c.attempt(ctx, client, req)
		if err != nil {
			failures = append(failures, err)
			c.logger.Debug("provider failed, trying next",
				zap.String("provider", client.Name()),
				zap.String("kind", string(err.Kind)),
				zap.Error(err.Err),
			)
			continue
		}

		span.SetAttributes(attribute.String("cascade.provider", client.Name()))
		return resp, client.Name(), nil
	}

	exhausted := &ExhaustedError{Failures: failures}
	span.SetStatus(codes.Error, "all providers failed")
	return nil, "", exhausted
}

func (c *Cascade) attempt(ctx context.Context, client Client, req *CompletionRequest) (*CompletionResponse, *ProviderError) {
	name := client.Name()
	ctx, span := c.tracer.Start(ctx, "provider.complete",
		trace.WithAttributes(attribute.String("provider", name)),
	)
	defer span.End()

	start := time.Now()
	resp, err := client.Complete(ctx, req)

	var failure *ProviderError
	switch {
	case err != nil:
		failure = classify(name, err)
	case resp == nil || resp.Content == "":
		failure = backendError(name, ErrEmptyReply)
	}

	if failure != nil {
		// Unconfigured providers never leave the process; keep them out of
		// latency histograms.
		if failure.Kind == KindUnconfigured {
			metrics.ProviderAttempts.WithLabelValues(name, string(failure.Kind)).Inc()
		} else {
			metrics.RecordAttempt(name, string(failure.Kind), time.Since(start).Seconds())
		}
		span.SetStatus(codes.Error, string(failure.Kind))
		span.RecordError(failure.Err)
		return nil, failure
	}

	metrics.RecordAttempt(name, "success", time.Since(start).Seconds())
	metrics.RecordTokens(name, resp.TokensIn, resp.TokensOut)
	return resp, nil
}

// Health probes every provider concurrently and returns their advisory
// availability in cascade order. Dispatch never consults it.
func (c *Cascade) Health(ctx context.Context) []ProviderStatus {
	statuses := make([]ProviderStatus, len(c.clients))

	g, gctx := errgroup.WithContext(ctx)
	for i, client := range c.clients {
		i, client := i, client
		g.Go(func() error {
			statuses[i] = ProviderStatus{
				Name:      client.Name(),
				Available: client.Available(gctx),
			}
			return nil
		})
	}
	_ = g.Wait()

	return statuses
}
