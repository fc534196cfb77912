package commands

import (
	"github.com/spf13/cobra"
	"github.com/systmms/aws-secrets/internal/config"
	"github.com/systmms/aws-secrets/internal/dotenv"
)

func NewWriteCommand(cfg *config.Config) *cobra.Command {
	var (
		environment string
		filename    string
	)

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write secrets to a .env file",
		Long: `Fetch the configured secret and write every key to a .env file.
The file is replaced and readable only by its owner.

Examples:
  aws-secrets write
  aws-secrets write -e production -f .env.production`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd, cfg)
			defer cancel()

			sp := startSpinner(cmd, cfg, "Writing secrets to "+filename+"...")
			m, err := fetchSecrets(ctx, cfg)
			sp.Stop()
			if err != nil {
				return timeoutError(err, cfg.TimeoutOrDefault())
			}

			written, err := writeEnvFile(cfg, filename, environment, m)
			if err != nil {
				return err
			}
			cfg.Logger.Info("Successfully wrote %d secrets to %s", written, filename)
			return nil
		},
	}

	cmd.Flags().StringVarP(&environment, "environment", "e", dotenv.DefaultEnvironment, "Environment name recorded in the file header")
	cmd.Flags().StringVarP(&filename, "filename", "f", dotenv.DefaultFilename, "Output filename")

	return cmd
}
