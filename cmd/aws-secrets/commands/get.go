package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/systmms/aws-secrets/internal/config"
	"github.com/systmms/aws-secrets/internal/errors"
)

func NewGetCommand(cfg *config.Config) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a secret value",
		Long: `Print the raw value of one key, suitable for scripting.

Examples:
  aws-secrets get DATABASE_URL
  export DB_URL=$(aws-secrets get DATABASE_URL)
  aws-secrets get API_KEY --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			ctx, cancel := withTimeout(cmd, cfg)
			defer cancel()

			sp := startSpinner(cmd, cfg, "Fetching secret...")
			m, err := fetchSecrets(ctx, cfg)
			sp.Stop()
			if err != nil {
				return timeoutError(err, cfg.TimeoutOrDefault())
			}

			value, ok := m.Get(key)
			if !ok {
				return errors.UserError{
					Message:    fmt.Sprintf("Secret '%s' not found", key),
					Suggestion: "Run 'aws-secrets list' to see available keys",
				}
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]string{
					"key":    key,
					"value":  value,
					"secret": cfg.Settings.SecretName,
				})
			}
			_, err = fmt.Fprintln(out, value)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output key, value and secret name as JSON")

	return cmd
}
