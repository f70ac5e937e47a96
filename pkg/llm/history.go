package llm

import "fmt"

// HistoryLimit is the number of prior turns forwarded upstream.
const HistoryLimit = 10

// LastTurns returns the last n turns of history in their original order.
// The returned slice never aliases history.
func LastTurns(history []Turn, n int) []Turn {
	if n < 0 {
		n = 0
	}
	start := len(history) - n
	if start < 0 {
		start = 0
	}

	out := make([]Turn, len(history)-start)
	copy(out, history[start:])
	return out
}

// HistoryError describes the first malformed entry found in a history.
type HistoryError struct {
	Index  int
	Reason string
}

func (e *HistoryError) Error() string {
	return fmt.Sprintf("history[%d]: %s", e.Index, e.Reason)
}

// ValidateHistory checks that every turn forwarded upstream carries a known
// role and non-empty content. Turns dropped by truncation are not inspected.
// Reported indices refer to the full history.
func ValidateHistory(history []Turn) error {
	start := len(history) - HistoryLimit
	if start < 0 {
		start = 0
	}
	for i := start; i < len(history); i++ {
		t := history[i]
		if !t.Role.Valid() {
			return &HistoryError{Index: i, Reason: fmt.Sprintf("invalid role %q", t.Role)}
		}
		if t.Content == "" {
			return &HistoryError{Index: i, Reason: "empty content"}
		}
	}
	return nil
}

// BuildMessages assembles the message list sent upstream: the last
// HistoryLimit turns of history followed by exactly one user turn.
func BuildMessages(history []Turn, message string) []Turn {
	messages := LastTurns(history, HistoryLimit)
	return append(messages, Turn{Role: RoleUser, Content: message})
}
