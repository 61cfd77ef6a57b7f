package model

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Permitted reports whether the role may be forwarded to a provider.
func (r Role) Permitted() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is a single role-tagged turn. Inbound messages carry whatever role
// the client sent; normalized conversations only carry user and assistant.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the inbound chat payload.
type ChatRequest struct {
	Messages []Message `json:"messages"`
}

// ChatResponse is the reply returned to the client.
type ChatResponse struct {
	Reply     string `json:"reply"`
	Remaining int    `json:"remaining"`
	Provider  string `json:"provider"`
}
