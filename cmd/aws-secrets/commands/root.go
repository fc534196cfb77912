package commands

import (
	"github.com/spf13/cobra"
	"github.com/systmms/aws-secrets/internal/config"
	"github.com/systmms/aws-secrets/internal/logging"
	"github.com/systmms/aws-secrets/internal/ui"
)

// skipConfigAnnotation marks commands that run without a saved configuration.
const skipConfigAnnotation = "aws-secrets/skip-config-check"

// NewRootCommand builds the aws-secrets command tree around cfg.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	var (
		configFile     string
		noColor        bool
		debug          bool
		nonInteractive bool
		metricsFile    string
	)

	rootCmd := &cobra.Command{
		Use:   "aws-secrets",
		Short: "AWS Secrets Manager CLI with .env integration",
		Long: `aws-secrets keeps the key/value pairs of one AWS Secrets Manager secret
in step with a local .env file: add, remove, list and fetch keys, write
them to disk, or push a local file back with merge or overwrite semantics.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				ui.DisableColor()
			}
			logger := logging.New(debug, noColor || ui.NoColor())
			logger.SetOutput(cmd.ErrOrStderr())

			cfg.Path = configFile
			cfg.Logger = logger
			cfg.NonInteractive = nonInteractive
			cfg.MetricsFile = metricsFile

			// Commands that skip the check load the file themselves.
			if skipsConfigCheck(cmd) {
				return nil
			}
			return cfg.Require()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultPath, "Config file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Non-interactive mode (no prompts, no spinner)")
	rootCmd.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", config.DefaultTimeout, "Timeout for AWS calls")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write sync metrics to this node-exporter textfile")

	rootCmd.AddCommand(
		NewInitCommand(cfg),
		NewAddCommand(cfg),
		NewGetCommand(cfg),
		NewRemoveCommand(cfg),
		NewListCommand(cfg),
		NewWriteCommand(cfg),
		NewSyncCommand(cfg),
		NewDoctorCommand(cfg),
		NewCompletionCommand(cfg),
	)

	return rootCmd
}

func skipsConfigCheck(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipConfigAnnotation] == "true" {
			return true
		}
		switch c.Name() {
		case "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return true
		}
	}
	return false
}
