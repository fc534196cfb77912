package commands

import (
	"github.com/spf13/cobra"
	"github.com/systmms/aws-secrets/internal/config"
	"github.com/systmms/aws-secrets/internal/dotenv"
	"github.com/systmms/aws-secrets/internal/secrets"
)

func NewAddCommand(cfg *config.Config) *cobra.Command {
	var (
		write    bool
		filename string
	)

	cmd := &cobra.Command{
		Use:   "add <key> <value>",
		Short: "Add or update a secret",
		Long: `Add a key to the configured secret, or replace its value if it exists.

Examples:
  aws-secrets add DATABASE_URL postgres://localhost/app
  aws-secrets add API_KEY abc123 --write`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if err := validateKey(key); err != nil {
				return err
			}

			ctx, cancel := withTimeout(cmd, cfg)
			defer cancel()

			sp := startSpinner(cmd, cfg, "Adding secret...")
			m, _, err := mutateSecrets(ctx, cfg, func(m *secrets.Map) bool {
				m.Set(key, value)
				return true
			})
			sp.Stop()
			if err != nil {
				return timeoutError(err, cfg.TimeoutOrDefault())
			}
			cfg.Logger.Info("Successfully added secret: %s", key)

			if write {
				if _, err := writeEnvFile(cfg, filename, dotenv.DefaultEnvironment, m); err != nil {
					return err
				}
				cfg.Logger.Info("Updated %s file", filename)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the .env file after adding")
	cmd.Flags().StringVarP(&filename, "filename", "f", dotenv.DefaultFilename, "File to write with --write")

	return cmd
}
