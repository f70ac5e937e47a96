package askcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/himi-ai-lab/chatrelay/cmd/chatrelay/render"
	"github.com/himi-ai-lab/chatrelay/pkg/llm"
	"github.com/himi-ai-lab/chatrelay/relay"
)

const askLongDesc string = `Send a message to a running chat relay and print the reply.

Prior turns can be supplied as a JSON file holding an array of
{"role": "user"|"assistant", "content": "..."} objects. On a terminal the
reply is rendered as markdown.

Examples:
  chatrelay ask "AIレクチャーの料金を教えてください"
  chatrelay ask --server http://192.168.1.42:10000 --history turns.json "続きをお願いします"`

const askShortDesc string = "Send a message to a chat relay"

type askCommander struct {
	serverURL   string
	historyPath string
	timeout     time.Duration
	verbose     bool
}

// chatResult is the union of the relay's success and error bodies.
type chatResult struct {
	Response string `json:"response"`
	Error    string `json:"error"`
	Success  bool   `json:"success"`
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.serverURL, "server", "s", "http://localhost:10000", "Chat relay base URL")
	cmd.Flags().StringVar(&cmder.historyPath, "history", "", "Path to a JSON file of prior turns")
	cmd.Flags().DurationVar(&cmder.timeout, "timeout", 2*time.Minute, "Request timeout")
	cmd.Flags().BoolVarP(&cmder.verbose, "verbose", "v", false, "Print the conversation hash")

	return cmd
}

func (c *askCommander) run(ctx context.Context, cmd *cobra.Command, message string) error {
	history, err := c.loadHistory()
	if err != nil {
		return err
	}

	result, hash, err := c.postChat(ctx, llm.ChatRequest{Message: message, History: history})
	if err != nil {
		return err
	}

	if !result.Success {
		render.Errorf(cmd.ErrOrStderr(), "%s", result.Error)
		return fmt.Errorf("chat failed: %s", result.Error)
	}

	out := cmd.OutOrStdout()
	if render.IsTerminal(out) {
		render.Label(out, "Himi AI")
	}
	if err := render.Markdown(out, result.Response); err != nil {
		return err
	}
	if c.verbose && hash != "" {
		render.Faintf(cmd.ErrOrStderr(), "conversation %s", hash)
	}

	return nil
}

func (c *askCommander) loadHistory() ([]llm.Turn, error) {
	if c.historyPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(c.historyPath)
	if err != nil {
		return nil, fmt.Errorf("could not read history file: %w", err)
	}

	var history []llm.Turn
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("could not parse history file %s: %w", c.historyPath, err)
	}
	return history, nil
}

func (c *askCommander) postChat(ctx context.Context, req llm.ChatRequest) (*chatResult, string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, "", fmt.Errorf("could not marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := strings.TrimRight(c.serverURL, "/") + "/chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("could not create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("could not read response: %w", err)
	}

	var result chatResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, "", fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	return &result, resp.Header.Get(relay.ConversationHashHeader), nil
}
