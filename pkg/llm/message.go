package llm

// Role tags a conversation turn with its author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a role the upstream API accepts in a message list.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Turn represents a single message in a conversation.
type Turn struct {
	Role    Role   `json:"role"`    // "user" or "assistant"
	Content string `json:"content"` // The message text
}
