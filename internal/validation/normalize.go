// Package validation normalizes inbound conversations before they reach any
// provider.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/activemirror/beacon-chat/internal/model"
)

// Reason identifies why a conversation was rejected.
type Reason string

const (
	ReasonEmptyConversation    Reason = "empty-conversation"
	ReasonSessionLimitExceeded Reason = "session-limit-exceeded"
	ReasonLastTurnNotUser      Reason = "last-turn-not-user"
	ReasonMessageTooLong       Reason = "message-too-long"
	ReasonEmptyMessage         Reason = "empty-message"
)

// Error is a rejected conversation.
type Error struct {
	Reason  Reason
	message string
}

func (e *Error) Error() string {
	return string(e.Reason)
}

// Message returns the client-facing text for the rejection.
func (e *Error) Message() string {
	return e.message
}

// Normalizer enforces the session cap and per-turn length limit.
type Normalizer struct {
	MaxTurns         int
	MaxContentLength int
}

// NewNormalizer creates a normalizer.
func NewNormalizer(maxTurns, maxContentLength int) *Normalizer {
	return &Normalizer{
		MaxTurns:         maxTurns,
		MaxContentLength: maxContentLength,
	}
}

// Normalize validates the turn being sent and sanitizes the history. The last
// turn is checked strictly; earlier turns with unsupported roles are dropped
// and every kept body is truncated to MaxContentLength characters.
func (n *Normalizer) Normalize(raw []model.Message) (model.Conversation, error) {
	if len(raw) == 0 {
		return nil, &Error{Reason: ReasonEmptyConversation, message: "No messages provided"}
	}
	if len(raw) > n.MaxTurns {
		return nil, &Error{
			Reason:  ReasonSessionLimitExceeded,
			message: fmt.Sprintf("Session limit: max %d messages per conversation.", n.MaxTurns),
		}
	}

	last := raw[len(raw)-1]
	if last.Role != model.RoleUser {
		return nil, &Error{Reason: ReasonLastTurnNotUser, message: "Last message must be from user"}
	}
	if utf8.RuneCountInString(last.Content) > n.MaxContentLength {
		return nil, &Error{
			Reason:  ReasonMessageTooLong,
			message: fmt.Sprintf("Message too long: max %d characters", n.MaxContentLength),
		}
	}
	if strings.TrimSpace(last.Content) == "" {
		return nil, &Error{Reason: ReasonEmptyMessage, message: "Empty message"}
	}

	clean := make(model.Conversation, 0, len(raw))
	for _, msg := range raw {
		if !msg.Role.Permitted() {
			continue
		}
		clean = append(clean, model.Message{
			Role:    msg.Role,
			Content: truncate(msg.Content, n.MaxContentLength),
		})
	}

	return clean, nil
}

// truncate cuts s to at most max characters without splitting a rune.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	i := 0
	for pos := range s {
		if i == max {
			return s[:pos]
		}
		i++
	}
	return s
}
