package llm

// ChatResponse is the body returned by POST /chat on success.
type ChatResponse struct {
	Response string `json:"response"`
	Success  bool   `json:"success"`
}

// ContentBlock is one block of generated output.
type ContentBlock struct {
	Type string `json:"type"`           // "text", "tool_use", ...
	Text string `json:"text,omitempty"` // Set for text blocks
}

// Usage reports token accounting for a generation call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// GenerationResponse is the upstream reply to a GenerationRequest.
type GenerationResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	Role       Role           `json:"role"`
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
}
