package relay

import (
	"github.com/gofiber/fiber/v2"

	"github.com/himi-ai-lab/chatrelay/pkg/llm"
)

// Messages returned to clients. The service answers in Japanese.
const (
	msgEmptyMessage   = "メッセージが空です"
	msgInvalidBody    = "リクエストの形式が不正です"
	msgInvalidHistory = "履歴の形式が不正です"

	prefixAPIError     = "APIエラー"
	prefixGenericError = "エラー"
)

// OutcomeKind classifies how a chat request ended.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeValidationError
	OutcomeUpstreamError
	OutcomeUnknownError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeValidationError:
		return "validation_error"
	case OutcomeUpstreamError:
		return "upstream_error"
	default:
		return "unknown_error"
	}
}

// StatusCode maps the outcome onto the HTTP status returned to the client.
func (k OutcomeKind) StatusCode() int {
	switch k {
	case OutcomeSuccess:
		return fiber.StatusOK
	case OutcomeValidationError:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// Outcome is the result of handling one chat request.
type Outcome struct {
	Kind OutcomeKind

	// Text is the reply for OutcomeSuccess and the client-facing message for
	// OutcomeValidationError.
	Text string

	// Err carries the failure for upstream and unknown outcomes.
	Err error

	// Fingerprint is the head hash of the conversation sent upstream.
	Fingerprint string
}

func success(text, fingerprint string) Outcome {
	return Outcome{Kind: OutcomeSuccess, Text: text, Fingerprint: fingerprint}
}

func invalid(msg string) Outcome {
	return Outcome{Kind: OutcomeValidationError, Text: msg}
}

func upstreamFailure(err error) Outcome {
	return Outcome{Kind: OutcomeUpstreamError, Err: err}
}

func unknownFailure(err error) Outcome {
	return Outcome{Kind: OutcomeUnknownError, Err: err}
}

// Body renders the outcome as the JSON body returned to the client.
func (o Outcome) Body() any {
	switch o.Kind {
	case OutcomeSuccess:
		return llm.ChatResponse{Response: o.Text, Success: true}
	case OutcomeValidationError:
		return llm.ErrorResponse{Error: o.Text}
	case OutcomeUpstreamError:
		return llm.ErrorResponse{Error: prefixAPIError + ": " + errText(o.Err)}
	default:
		return llm.ErrorResponse{Error: prefixGenericError + ": " + errText(o.Err)}
	}
}

func errText(err error) string {
	if err == nil {
		return "unknown failure"
	}
	return err.Error()
}
