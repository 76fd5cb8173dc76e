package commands

import (
	"fmt"
	"strings"

	"github.com/benvon/todo-chat/internal/app"
	"github.com/spf13/cobra"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message...>",
		Short: "Send one message and print the reply",
		Long:  "Send one message to the assistant. Todo changes in the reply are applied and the updated list is printed.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				result, err := a.Conversation.Send(cmd.Context(), text)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, result.Reply.Content)
				if result.Failed() {
					return fmt.Errorf("completion failed")
				}
				if result.Applied > 0 {
					fmt.Fprintln(out)
					printTodos(out, result.Todos)
				}
				return nil
			})
		},
	}
}
