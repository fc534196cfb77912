package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/systmms/aws-secrets/internal/config"
	"github.com/systmms/aws-secrets/internal/errors"
)

// CheckResult is one row of the doctor report.
type CheckResult struct {
	Name       string
	Status     string // ok, error, skipped
	Message    string
	Suggestion string
}

func NewDoctorCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, credentials and secret access",
		Long: `Verify that aws-secrets is ready to use.

This command checks:
- Configuration file validity
- Which credentials will be used and whom they resolve to
- Read access to the configured secret`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			results := runChecks(cmd, cfg)

			out := cmd.OutOrStdout()
			displayCheckResults(out, results)

			healthy := 0
			for _, r := range results {
				if r.Status == "ok" {
					healthy++
				}
			}
			fmt.Fprintf(out, "\nSummary: %d/%d checks passed\n", healthy, len(results))
			if healthy < len(results) {
				return fmt.Errorf("some checks did not pass")
			}
			cfg.Logger.Info("All systems operational!")
			return nil
		},
	}

	return cmd
}

func runChecks(cmd *cobra.Command, cfg *config.Config) []CheckResult {
	loadErr := cfg.Load()
	s := cfg.Settings

	configCheck := CheckResult{Name: "configuration", Status: "ok", Message: fmt.Sprintf("%s in %s", s.SecretName, s.Region)}
	if loadErr != nil {
		configCheck.Status = "error"
		configCheck.Message = loadErr.Error()
		configCheck.Suggestion = "Fix the file or run 'aws-secrets init' to rewrite it"
	} else if !s.Complete() {
		configCheck.Status = "error"
		configCheck.Message = "region or secret name missing"
		configCheck.Suggestion = "Run 'aws-secrets init'"
	} else if err := config.Validate(s); err != nil {
		configCheck.Status = "error"
		configCheck.Message = err.Error()
		configCheck.Suggestion = "Run 'aws-secrets init' to rewrite the configuration"
	}

	credCheck := CheckResult{Name: "credentials", Status: "ok", Message: credentialSource(s)}
	identityCheck := CheckResult{Name: "identity", Status: "skipped"}
	secretCheck := CheckResult{Name: "secret access", Status: "skipped"}

	if configCheck.Status != "ok" {
		return []CheckResult{configCheck, credCheck, identityCheck, secretCheck}
	}

	ctx, cancel := withTimeout(cmd, cfg)
	defer cancel()

	store, err := newStore(ctx, cfg)
	if err != nil {
		credCheck.Status = "error"
		credCheck.Message = err.Error()
		credCheck.Suggestion = errors.Suggest(err)
		return []CheckResult{configCheck, credCheck, identityCheck, secretCheck}
	}

	sp := startSpinner(cmd, cfg, "Checking AWS access...")
	id, err := store.Identity(ctx)
	if err != nil {
		err = timeoutError(err, cfg.TimeoutOrDefault())
		identityCheck.Status = "error"
		identityCheck.Message = err.Error()
		identityCheck.Suggestion = errors.Suggest(err)
	} else {
		identityCheck.Status = "ok"
		identityCheck.Message = fmt.Sprintf("%s (account %s)", id.ARN, id.Account)
	}

	m, err := store.Fetch(ctx)
	sp.Stop()
	if err != nil {
		err = timeoutError(err, cfg.TimeoutOrDefault())
		secretCheck.Status = "error"
		secretCheck.Message = err.Error()
		secretCheck.Suggestion = errors.Suggest(err)
	} else {
		secretCheck.Status = "ok"
		secretCheck.Message = fmt.Sprintf("%d keys readable", m.Len())
	}

	return []CheckResult{configCheck, credCheck, identityCheck, secretCheck}
}

func credentialSource(s config.Settings) string {
	switch {
	case s.AccessKeyID != "" && s.UsesKeyring():
		return "access key " + s.AccessKeyID + " (secret in system keychain)"
	case s.AccessKeyID != "":
		return "access key " + s.AccessKeyID + " (from config file)"
	default:
		return "AWS default credential chain"
	}
}

// displayCheckResults shows the checks in a formatted table
func displayCheckResults(w io.Writer, results []CheckResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(tw, "CHECK\tSTATUS\tMESSAGE\n")
	_, _ = fmt.Fprintf(tw, "-----\t------\t-------\n")

	for _, r := range results {
		status := r.Status
		switch r.Status {
		case "ok":
			status = "✓ " + status
		case "error":
			status = "✗ " + status
		default:
			status = "- " + status
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, status, r.Message)
	}
	_ = tw.Flush()

	for _, r := range results {
		if r.Suggestion != "" {
			fmt.Fprintf(w, "\n%s: %s\n", r.Name, r.Suggestion)
		}
	}
}
