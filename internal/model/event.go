package model

import (
	"time"
)

// EventType represents the type of gateway event.
type EventType string

const (
	EventTypeExhausted EventType = "providers_exhausted"
)

// ProviderFailure is one provider's failure inside a cascade.
type ProviderFailure struct {
	Provider string `json:"provider"`
	Kind     string `json:"kind"`
	Reason   string `json:"reason"`
}

// GatewayEvent is an operator-facing event published out of band.
type GatewayEvent struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	Client    string            `json:"client"`
	Reason    string            `json:"reason,omitempty"`
	Failures  []ProviderFailure `json:"failures,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// DiagnosticsResponse is the operator diagnostics view.
type DiagnosticsResponse struct {
	Chain             []string        `json:"chain"`
	TrackedIdentities int             `json:"tracked_identities"`
	RecentExhaustions []*GatewayEvent `json:"recent_exhaustions"`
}
