package main

import (
	"os"

	"github.com/spf13/cobra"

	askcmder "github.com/himi-ai-lab/chatrelay/cmd/chatrelay/ask"
	promptcmder "github.com/himi-ai-lab/chatrelay/cmd/chatrelay/prompt"
	servecmder "github.com/himi-ai-lab/chatrelay/cmd/chatrelay/serve"
)

const rootLongDesc string = `chatrelay is the Himi AI Lab chatbot server.

It relays a user message and recent conversation history to the Anthropic
Messages API with a fixed system instruction and returns the reply as JSON.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "chatrelay",
		Short:        "Himi AI Lab chatbot relay",
		Long:         rootLongDesc,
		SilenceUsage: true,
	}

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(promptcmder.NewPromptCmd())

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
