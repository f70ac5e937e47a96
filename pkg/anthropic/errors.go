package anthropic

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorKind classifies failures raised by the client itself.
type ErrorKind string

const (
	// KindConnection means the request never produced a response.
	KindConnection ErrorKind = "connection"
	// KindTimeout means the request deadline passed before a response arrived.
	KindTimeout ErrorKind = "timeout"
	// KindStatus means the API answered with a non-2xx status.
	KindStatus ErrorKind = "status"
)

// APIError is returned for every failure talking to the Messages API.
// Failures interpreting a successful reply are plain errors instead.
type APIError struct {
	Kind       ErrorKind
	StatusCode int    // Set for KindStatus
	Type       string // Upstream error type, e.g. "authentication_error"
	Message    string // Upstream error message
	Body       string // Raw response body, for KindStatus
	Err        error  // Underlying transport error, if any
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindConnection:
		return "Connection error."
	case KindTimeout:
		return "Request timed out."
	default:
		return fmt.Sprintf("Error code: %d - %s", e.StatusCode, e.Body)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// errorEnvelope is the JSON body the API sends with non-2xx responses.
type errorEnvelope struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func newStatusError(status int, body []byte) *APIError {
	apiErr := &APIError{
		Kind:       KindStatus,
		StatusCode: status,
		Body:       strings.TrimSpace(string(body)),
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		apiErr.Type = env.Error.Type
		apiErr.Message = env.Error.Message
	}

	return apiErr
}
