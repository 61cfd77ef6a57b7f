// Package model defines data structures for the chat gateway.
package model

// Conversation is an ordered, normalized chat history. It is non-empty, holds
// at most the session cap of turns, and ends with a user turn.
type Conversation []Message

// HealthResponse is the advisory provider availability view.
type HealthResponse struct {
	Status    string   `json:"status"`
	Providers []string `json:"providers"`
	Primary   string   `json:"primary"`
}

// ErrorResponse is the error body returned to clients.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}
