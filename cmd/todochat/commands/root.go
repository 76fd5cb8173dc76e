// Package commands implements the todochat command line.
package commands

import (
	"context"
	"fmt"

	"github.com/benvon/todo-chat/internal/app"
	"github.com/benvon/todo-chat/internal/config"
	"github.com/benvon/todo-chat/internal/logger"
	"github.com/spf13/cobra"
)

// ConfigLoader returns the configuration the commands run with
type ConfigLoader func() (*config.Config, error)

type rootOptions struct {
	loadConfig ConfigLoader
	debug      bool
}

// NewRootCmd creates the todochat command tree
func NewRootCmd(loadConfig ConfigLoader) *cobra.Command {
	opts := &rootOptions{loadConfig: loadConfig}

	rootCmd := &cobra.Command{
		Use:           "todochat",
		Short:         "Manage a todo list by chatting with an assistant",
		Long:          "Command line client for todo-chat. Talks to the same storage the server uses.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Log sanitized completion requests and responses to stderr")

	rootCmd.AddCommand(newChatCmd(opts))
	rootCmd.AddCommand(newTodosCmd(opts))
	rootCmd.AddCommand(newMessagesCmd(opts))
	rootCmd.AddCommand(newResetCmd(opts))
	rootCmd.AddCommand(newBackupCmd(opts))

	return rootCmd
}

// withApp builds the application for one command and closes it afterwards
func (o *rootOptions) withApp(ctx context.Context, fn func(*app.App) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	debug := o.debug || cfg.ServerDebugMode
	zapLogger, err := logger.NewCLILogger(debug)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	a, err := app.Build(ctx, cfg, zapLogger, app.Options{DebugMode: debug, RabbitMQRetries: 1})
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	return fn(a)
}
