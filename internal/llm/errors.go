package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// FailureKind classifies a provider failure.
type FailureKind string

const (
	// KindUnconfigured means credentials or endpoint are absent.
	KindUnconfigured FailureKind = "unconfigured"
	// KindTimeout means the call exceeded the adapter's deadline.
	KindTimeout FailureKind = "timeout"
	// KindBackend covers non-success status, malformed payloads and empty replies.
	KindBackend FailureKind = "backend-error"
)

var (
	// ErrUnconfigured is wrapped by failures of providers that are not set up.
	ErrUnconfigured = errors.New("provider not configured")
	// ErrEmptyReply is returned when a backend answers without text.
	ErrEmptyReply = errors.New("empty reply")
	// ErrMalformedResponse is returned when a reply cannot be extracted.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrAllProvidersFailed is matched by *ExhaustedError.
	ErrAllProvidersFailed = errors.New("all providers failed")
)

// ProviderError is a single provider's failure.
type ProviderError struct {
	Provider string
	Kind     FailureKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func unconfigured(provider, detail string) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Kind:     KindUnconfigured,
		Err:      fmt.Errorf("%w: %s", ErrUnconfigured, detail),
	}
}

func backendError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: KindBackend, Err: err}
}

// classify wraps err as a *ProviderError, detecting timeouts.
func classify(provider string, err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}

	kind := KindBackend
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindTimeout
	}
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

// ExhaustedError is returned when every provider in the chain failed.
type ExhaustedError struct {
	Failures []*ProviderError
}

func (e *ExhaustedError) Error() string {
	if len(e.Failures) == 0 {
		return "all providers failed: empty chain"
	}
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return "all providers failed: " + strings.Join(parts, "; ")
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrAllProvidersFailed
}
