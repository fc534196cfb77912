package commands

import (
	"github.com/spf13/cobra"
	"github.com/systmms/aws-secrets/internal/config"
	"github.com/systmms/aws-secrets/internal/dotenv"
	"github.com/systmms/aws-secrets/internal/secrets"
)

func NewRemoveCommand(cfg *config.Config) *cobra.Command {
	var (
		write    bool
		filename string
	)

	cmd := &cobra.Command{
		Use:     "remove <key>",
		Aliases: []string{"rm"},
		Short:   "Remove a secret",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			ctx, cancel := withTimeout(cmd, cfg)
			defer cancel()

			sp := startSpinner(cmd, cfg, "Removing secret...")
			m, removed, err := mutateSecrets(ctx, cfg, func(m *secrets.Map) bool {
				return m.Delete(key)
			})
			sp.Stop()
			if err != nil {
				return timeoutError(err, cfg.TimeoutOrDefault())
			}
			if !removed {
				cfg.Logger.Warn("Secret '%s' not found", key)
				return nil
			}
			cfg.Logger.Info("Successfully removed secret: %s", key)

			if write {
				if _, err := writeEnvFile(cfg, filename, dotenv.DefaultEnvironment, m); err != nil {
					return err
				}
				cfg.Logger.Info("Updated %s file", filename)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the .env file after removing")
	cmd.Flags().StringVarP(&filename, "filename", "f", dotenv.DefaultFilename, "File to write with --write")

	return cmd
}
