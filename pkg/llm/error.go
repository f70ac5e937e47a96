// Package llm provides the internal representations of chat relay requests and
// responses, and of the generation calls made to the upstream LLM API.
package llm

// ErrorResponse is the body returned to clients when a chat request fails.
type ErrorResponse struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}
