package llm

// ChatRequest is the body accepted by POST /chat.
type ChatRequest struct {
	Message string `json:"message"`           // The new user message
	History []Turn `json:"history,omitempty"` // Prior turns, oldest first
}

// GenerationRequest is a single call to the upstream generation service.
// System travels out of band and is never part of Messages.
type GenerationRequest struct {
	Model     string `json:"model"`
	System    string `json:"system,omitempty"`
	Messages  []Turn `json:"messages"`
	MaxTokens int    `json:"max_tokens"`
}
