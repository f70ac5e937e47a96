package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/himi-ai-lab/chatrelay/pkg/anthropic"
	"github.com/himi-ai-lab/chatrelay/pkg/llm"
	"github.com/himi-ai-lab/chatrelay/pkg/merkle"
	"github.com/himi-ai-lab/chatrelay/pkg/prompt"
)

// ConversationHashHeader carries the fingerprint of the conversation sent upstream.
const ConversationHashHeader = "X-Conversation-Hash"

// handleChat relays one chat request upstream. Every failure is mapped to a
// JSON error body here; nothing escapes to the fiber error handler.
func (r *Relay) handleChat(c *fiber.Ctx) error {
	startTime := time.Now()
	r.metrics.ChatRequestsInFlight.Inc()
	defer r.metrics.ChatRequestsInFlight.Dec()

	log := r.logger.With(zap.String("request_id", requestID(c)))
	log.Info("chat endpoint called")

	outcome := r.chat(c.UserContext(), c.Body(), log)
	r.metrics.RecordChat(outcome.Kind.String())

	switch outcome.Kind {
	case OutcomeSuccess:
		c.Set(ConversationHashHeader, outcome.Fingerprint)
		log.Info("chat completed", zap.Duration("duration", time.Since(startTime)))
	case OutcomeValidationError:
		log.Warn("rejected chat request", zap.String("reason", outcome.Text))
	case OutcomeUpstreamError:
		log.Error("upstream API error", zap.Error(outcome.Err))
	default:
		log.Error("chat request failed", zap.Error(outcome.Err))
	}

	return c.Status(outcome.Kind.StatusCode()).JSON(outcome.Body())
}

// chat validates the request body, calls the upstream service, and
// classifies the result.
func (r *Relay) chat(ctx context.Context, body []byte, log *zap.Logger) Outcome {
	log.Debug("received chat request", zap.ByteString("payload", body))

	var req llm.ChatRequest
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			log.Debug("failed to parse request", zap.Error(err))
			return invalid(msgInvalidBody)
		}
	}

	if req.Message == "" {
		return invalid(msgEmptyMessage)
	}
	if err := llm.ValidateHistory(req.History); err != nil {
		return invalid(msgInvalidHistory + ": " + err.Error())
	}

	if len(req.History) > llm.HistoryLimit {
		r.metrics.HistoryTruncated.Inc()
	}
	messages := llm.BuildMessages(req.History, req.Message)
	fingerprint := merkle.Fingerprint(messages)

	genReq := &llm.GenerationRequest{
		Model:     r.config.Model,
		System:    prompt.System,
		Messages:  messages,
		MaxTokens: r.config.MaxTokens,
	}

	log.Info("calling upstream",
		zap.Int("message_count", len(messages)),
		zap.Int("history_received", len(req.History)),
		zap.String("conversation", truncate(fingerprint, 16)),
	)

	upstreamStart := time.Now()
	resp, err := r.generate(ctx, genReq)
	if err != nil {
		var apiErr *anthropic.APIError
		if errors.As(err, &apiErr) {
			r.metrics.RecordUpstream(OutcomeUpstreamError.String(), time.Since(upstreamStart))
			return upstreamFailure(apiErr)
		}
		r.metrics.RecordUpstream(OutcomeUnknownError.String(), time.Since(upstreamStart))
		return unknownFailure(err)
	}
	r.metrics.RecordUpstream(OutcomeSuccess.String(), time.Since(upstreamStart))

	text, err := replyText(resp)
	if err != nil {
		return unknownFailure(err)
	}

	log.Info("upstream replied",
		zap.String("content_preview", truncate(text, 100)),
		zap.String("stop_reason", resp.StopReason),
	)

	return success(text, fingerprint)
}

// generate calls the generator, turning a panic into an error.
func (r *Relay) generate(ctx context.Context, req *llm.GenerationRequest) (resp *llm.GenerationResponse, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = nil
			err = fmt.Errorf("generator panic: %v", rec)
		}
	}()

	return r.generator.Generate(ctx, req)
}

// replyText extracts the first content block as the reply.
func replyText(resp *llm.GenerationResponse) (string, error) {
	if resp == nil || len(resp.Content) == 0 {
		return "", errors.New("upstream reply contained no content blocks")
	}

	block := resp.Content[0]
	if block.Type != "" && block.Type != "text" {
		return "", fmt.Errorf("first content block has type %q, not text", block.Type)
	}

	return block.Text, nil
}

// truncate flattens newlines and shortens s to at most maxLen runes.
func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
