package commands

import (
	"fmt"
	"time"

	"github.com/benvon/todo-chat/internal/app"
	"github.com/benvon/todo-chat/internal/storage"
	"github.com/spf13/cobra"
)

func newBackupCmd(opts *rootOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Copy the stored documents to timestamped files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				reader, ok := a.Store.(storage.DocumentReader)
				if !ok {
					return fmt.Errorf("storage backend %q does not support backups", a.Config.StorageBackend)
				}
				written, err := storage.Backup(cmd.Context(), reader, dir, time.Now())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(written) == 0 {
					fmt.Fprintln(out, "Nothing to back up")
					return nil
				}
				for _, path := range written {
					fmt.Fprintln(out, path)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "backups", "Directory to write backups to")
	return cmd
}
