package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/benvon/todo-chat/internal/app"
	"github.com/benvon/todo-chat/internal/models"
	"github.com/spf13/cobra"
)

const displayTimeFormat = "2006-01-02 15:04"

func newTodosCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "todos",
		Short: "List todos in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				printTodos(cmd.OutOrStdout(), a.Conversation.Todos())
				return nil
			})
		},
	}
}

func newMessagesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "messages",
		Short: "Print the conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				out := cmd.OutOrStdout()
				for _, m := range a.Conversation.Messages() {
					fmt.Fprintf(out, "[%s] %s: %s\n", m.Timestamp.Local().Format(displayTimeFormat), m.Sender, m.Content)
				}
				return nil
			})
		},
	}
}

func printTodos(out io.Writer, todos []models.Todo) {
	if len(todos) == 0 {
		fmt.Fprintln(out, "No todos")
		return
	}
	for _, t := range todos {
		mark := " "
		if t.IsCompleted() {
			mark = "x"
		}
		line := fmt.Sprintf("[%s] %s (%s", mark, t.Title, t.Priority)
		if t.DueDate != nil {
			line += ", due " + t.DueDate.In(time.Local).Format(displayTimeFormat)
		}
		line += ")"
		if t.Status == models.TodoStatusInProgress {
			line += " in progress"
		}
		fmt.Fprintf(out, "%s  %s\n", line, t.ID)
	}
}
