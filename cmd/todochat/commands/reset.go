package commands

import (
	"fmt"

	"github.com/benvon/todo-chat/internal/app"
	"github.com/spf13/cobra"
)

func newResetCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the conversation and all todos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset deletes all messages and todos; pass --yes to confirm")
			}
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				if err := a.Conversation.Reset(cmd.Context()); err != nil {
					return fmt.Errorf("failed to reset: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Conversation and todos cleared")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the reset")
	return cmd
}
