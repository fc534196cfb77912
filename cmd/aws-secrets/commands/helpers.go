package commands

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/systmms/aws-secrets/internal/config"
	"github.com/systmms/aws-secrets/internal/errors"
	"github.com/systmms/aws-secrets/internal/logging"
	"github.com/systmms/aws-secrets/internal/secretstore"
	"github.com/systmms/aws-secrets/internal/ui"
	"golang.org/x/term"
)

// newStore builds a store from the loaded configuration.
func newStore(ctx context.Context, cfg *config.Config) (*secretstore.Store, error) {
	storeCfg, err := cfg.StoreConfig()
	if err != nil {
		return nil, err
	}
	cfg.Logger.Debug("Using secret %q in %s", storeCfg.SecretID, storeCfg.Region)
	if storeCfg.HasStaticCredentials() {
		cfg.Logger.Debug("Static credentials: %s / %s", storeCfg.AccessKeyID, logging.Secret(storeCfg.SecretAccessKey))
	}
	return secretstore.New(ctx, storeCfg, cfg.StoreOptions...)
}

// withTimeout bounds a command's AWS calls.
func withTimeout(cmd *cobra.Command, cfg *config.Config) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, cfg.TimeoutOrDefault())
}

// timeoutError replaces a deadline failure with a user-facing explanation.
func timeoutError(err error, timeout time.Duration) error {
	if err == nil || !stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errors.UserError{
		Message:    "AWS operation timed out",
		Details:    fmt.Sprintf("Operation exceeded %s timeout", timeout),
		Suggestion: "Check AWS connectivity and credentials, verify the region, or raise --timeout",
		Err:        err,
	}
}

// startSpinner shows a spinner on stderr when it is a terminal and the
// user has not asked for debug or non-interactive output.
func startSpinner(cmd *cobra.Command, cfg *config.Config, message string) *ui.Spinner {
	w := cmd.ErrOrStderr()
	enabled := !cfg.NonInteractive && !cfg.Logger.DebugEnabled() && isTerminal(w)
	return ui.StartSpinner(w, enabled, message)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
