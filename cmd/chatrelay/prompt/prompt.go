package promptcmder

import (
	"github.com/spf13/cobra"

	"github.com/himi-ai-lab/chatrelay/cmd/chatrelay/render"
	"github.com/himi-ai-lab/chatrelay/pkg/prompt"
)

const promptLongDesc string = `Print the fixed system instruction sent with every chat request.

On a terminal the instruction is rendered as markdown.`

const promptShortDesc string = "Print the system instruction"

func NewPromptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: promptShortDesc,
		Long:  promptLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return render.Markdown(cmd.OutOrStdout(), prompt.System)
		},
	}
}
