package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/systmms/aws-secrets/internal/config"
	"github.com/systmms/aws-secrets/internal/errors"
	"github.com/systmms/aws-secrets/internal/logging"
	"github.com/systmms/aws-secrets/internal/prompt"
	"github.com/systmms/aws-secrets/internal/secretstore"
	"github.com/systmms/aws-secrets/internal/secure"
	"github.com/systmms/aws-secrets/internal/ui"
)

const (
	authDefaultChain = "Use AWS CLI credentials"
	authManual       = "Enter AWS credentials manually"

	secretExisting = "Use existing secret"
	secretNew      = "Create new secret"
)

type initOptions struct {
	region          string
	secretName      string
	create          bool
	accessKeyID     string
	secretAccessKey string
	keyring         bool
}

func NewInitCommand(cfg *config.Config) *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize AWS Secrets Manager configuration",
		Long: `Create .secrets-config.json by choosing a region, how to authenticate,
and which secret to keep in sync. The connection is tested before anything
is saved.

Run without flags for the interactive wizard. With --non-interactive,
--secret-name is required and the remaining values come from flags or defaults.

Examples:
  aws-secrets init
  aws-secrets init --non-interactive --region eu-west-1 --secret-name myapp/dev --create`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				cfg.Logger.Warn("Ignoring existing configuration: %s", err)
			}
			w := &initWizard{
				cfg:    cfg,
				cmd:    cmd,
				opts:   opts,
				out:    cmd.OutOrStdout(),
				prompt: prompt.New(cmd.InOrStdin(), cmd.ErrOrStderr()),
			}
			if cfg.NonInteractive {
				return w.runNonInteractive()
			}
			return w.run()
		},
	}

	cmd.Flags().StringVar(&opts.region, "region", "", "AWS region")
	cmd.Flags().StringVar(&opts.secretName, "secret-name", "", "Secret to use (or create with --create)")
	cmd.Flags().BoolVar(&opts.create, "create", false, "Create the secret instead of using an existing one")
	cmd.Flags().StringVar(&opts.accessKeyID, "access-key-id", "", "Static AWS access key id")
	cmd.Flags().StringVar(&opts.secretAccessKey, "secret-access-key", "", "Static AWS secret access key")
	cmd.Flags().BoolVar(&opts.keyring, "keyring", false, "Keep the secret access key in the system keychain")

	return cmd
}

type initWizard struct {
	cfg    *config.Config
	cmd    *cobra.Command
	opts   initOptions
	out    io.Writer
	prompt *prompt.Prompter
}

func (w *initWizard) currentRegion() string {
	if w.opts.region != "" {
		return w.opts.region
	}
	if w.cfg.Settings.Region != "" {
		return w.cfg.Settings.Region
	}
	return config.DefaultRegion
}

func (w *initWizard) run() error {
	fmt.Fprintln(w.out, ui.Key.Sprint("AWS Secrets Manager CLI Configuration"))
	fmt.Fprintln(w.out)

	region := w.opts.region
	if region == "" {
		var err error
		region, err = w.prompt.Input("AWS Region", w.currentRegion(), func(v string) error {
			if config.ValidateField(config.FieldRegion, v) != nil {
				return errors.New(errors.KindConfiguration, "Please enter a valid AWS region (e.g., us-east-1)")
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	settings := config.Settings{Region: region, Endpoint: w.cfg.Settings.Endpoint}
	cred, err := w.askCredentials(&settings)
	if err != nil {
		return err
	}
	defer cred.Destroy()
	manual := !cred.Empty()

	store, err := w.connect(settings, cred)
	if err != nil {
		return err
	}

	secretName, err := w.chooseSecret(store)
	if err != nil {
		return err
	}
	settings.SecretName = secretName

	if err := w.save(settings, cred); err != nil {
		return err
	}

	authMethod := "AWS CLI"
	if manual {
		authMethod = "Manual Credentials"
		if settings.UsesKeyring() {
			authMethod += " (system keychain)"
		}
	}
	w.printSummary(settings, authMethod)
	return nil
}

// askCredentials fills in the access key id and credential store and
// returns the sealed secret access key. An empty credential means the
// default chain.
func (w *initWizard) askCredentials(settings *config.Settings) (*secure.Credential, error) {
	if w.opts.accessKeyID == "" && w.opts.secretAccessKey == "" {
		choice, err := w.prompt.Select("How would you like to authenticate with AWS?",
			[]string{authDefaultChain, authManual}, 0)
		if err != nil {
			return nil, err
		}
		if choice == 0 {
			return secure.NewCredential(nil), nil
		}
	}

	accessKeyID := w.opts.accessKeyID
	if accessKeyID == "" {
		var err error
		accessKeyID, err = w.prompt.Input("AWS Access Key ID", "", func(v string) error {
			return config.ValidateField(config.FieldAccessKeyID, v)
		})
		if err != nil {
			return nil, err
		}
	}

	var secret []byte
	if w.opts.secretAccessKey != "" {
		secret = []byte(w.opts.secretAccessKey)
	} else {
		var err error
		secret, err = w.prompt.Password("AWS Secret Access Key")
		if err != nil {
			return nil, err
		}
		if len(secret) == 0 {
			return nil, errors.UserError{Message: "AWS Secret Access Key is required"}
		}
	}
	cred := secure.NewCredential(secret)

	useKeyring := w.opts.keyring
	if !useKeyring {
		var err error
		useKeyring, err = w.prompt.Confirm("Store the secret access key in the system keychain?", false)
		if err != nil {
			cred.Destroy()
			return nil, err
		}
	}

	settings.AccessKeyID = accessKeyID
	settings.CredentialStore = config.CredentialStoreFile
	if useKeyring {
		settings.CredentialStore = config.CredentialStoreKeyring
	}
	return cred, nil
}

func (w *initWizard) storeConfig(settings config.Settings, cred *secure.Credential) (secretstore.StoreConfig, error) {
	secret, err := cred.Reveal()
	if err != nil {
		return secretstore.StoreConfig{}, err
	}
	return secretstore.StoreConfig{
		Region:          settings.Region,
		SecretID:        settings.SecretName,
		AccessKeyID:     settings.AccessKeyID,
		SecretAccessKey: secret,
		Endpoint:        settings.Endpoint,
	}, nil
}

// connect builds a store and proves the credentials work by listing secrets.
func (w *initWizard) connect(settings config.Settings, cred *secure.Credential) (*secretstore.Store, error) {
	storeCfg, err := w.storeConfig(settings, cred)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(w.cmd, w.cfg)
	defer cancel()

	store, err := secretstore.New(ctx, storeCfg, w.cfg.StoreOptions...)
	if err != nil {
		return nil, err
	}

	sp := startSpinner(w.cmd, w.cfg, "Testing AWS connection...")
	_, err = store.ListAll(ctx)
	if err != nil {
		sp.Stop()
		w.cfg.Logger.Error("AWS connection failed: %s", logging.Redact(errors.MessageOf(err), []string{storeCfg.SecretAccessKey}))
		return nil, timeoutError(err, w.cfg.TimeoutOrDefault())
	}
	id, idErr := store.Identity(ctx)
	sp.Stop()

	w.cfg.Logger.Info("AWS connection successful")
	if idErr != nil {
		w.cfg.Logger.Warn("Could not resolve caller identity: %v", idErr)
	} else {
		w.cfg.Logger.Info("Authenticated as %s", id.ARN)
	}
	return store, nil
}

func (w *initWizard) chooseSecret(store *secretstore.Store) (string, error) {
	if w.opts.secretName != "" {
		if w.opts.create {
			return w.opts.secretName, w.createSecret(store, w.opts.secretName)
		}
		return w.opts.secretName, nil
	}

	choice, err := w.prompt.Select("Would you like to use an existing secret or create a new one?",
		[]string{secretExisting, secretNew}, 0)
	if err != nil {
		return "", err
	}

	if choice == 0 {
		ctx, cancel := withTimeout(w.cmd, w.cfg)
		list, err := store.ListAll(ctx)
		cancel()
		if err != nil {
			return "", timeoutError(err, w.cfg.TimeoutOrDefault())
		}

		if len(list) == 0 {
			w.cfg.Logger.Warn("No existing secrets found. Creating new secret...")
		} else {
			names := make([]string, len(list))
			for i, d := range list {
				names[i] = d.Name
			}
			idx, err := w.prompt.Select("Select a secret:", names, 0)
			if err != nil {
				return "", err
			}
			return names[idx], nil
		}
	}

	name, err := w.prompt.Input("Enter name for new secret", "", func(v string) error {
		if v == "" {
			return errors.New(errors.KindConfiguration, "Secret name is required")
		}
		if config.ValidateField(config.FieldSecretName, v) != nil {
			return errors.New(errors.KindConfiguration, "Secret name can only contain alphanumeric characters and /_+=.@-")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return name, w.createSecret(store, name)
}

func (w *initWizard) createSecret(store *secretstore.Store, name string) error {
	ctx, cancel := withTimeout(w.cmd, w.cfg)
	defer cancel()

	sp := startSpinner(w.cmd, w.cfg, "Creating new secret...")
	err := store.Create(ctx, name)
	sp.Stop()
	if err != nil {
		w.cfg.Logger.Error("Failed to create secret")
		return timeoutError(err, w.cfg.TimeoutOrDefault())
	}
	w.cfg.Logger.Info("New secret created successfully")
	return nil
}

func (w *initWizard) save(settings config.Settings, cred *secure.Credential) error {
	secret, err := cred.Reveal()
	if err != nil {
		return err
	}
	settings.SecretAccessKey = secret

	if err := w.cfg.Save(settings); err != nil {
		return err
	}
	w.cfg.Logger.Info("Configuration saved successfully!")
	return nil
}

func (w *initWizard) printSummary(settings config.Settings, authMethod string) {
	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, ui.Key.Sprint("Configuration Summary:"))
	fmt.Fprintf(w.out, "Region: %s\n", settings.Region)
	fmt.Fprintf(w.out, "Secret Name: %s\n", settings.SecretName)
	fmt.Fprintf(w.out, "Auth Method: %s\n", authMethod)

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, ui.Key.Sprint("You can now use the following commands:"))
	for _, c := range []string{"list", "add KEY VALUE", "get KEY", "remove KEY", "write", "sync"} {
		fmt.Fprintf(w.out, "  %s\n", ui.Code.Sprint("aws-secrets "+c))
	}
}

// runNonInteractive configures from flags alone, for CI and scripts.
func (w *initWizard) runNonInteractive() error {
	if w.opts.secretName == "" {
		return errors.UserError{
			Message:    "--secret-name is required with --non-interactive",
			Suggestion: "aws-secrets init --non-interactive --region us-east-1 --secret-name myapp/dev",
		}
	}
	if (w.opts.accessKeyID == "") != (w.opts.secretAccessKey == "") {
		return errors.UserError{
			Message:    "--access-key-id and --secret-access-key must be given together",
			Suggestion: "Omit both to use the AWS default credential chain",
		}
	}
	if w.opts.keyring && w.opts.accessKeyID == "" {
		return errors.UserError{
			Message:    "--keyring needs --access-key-id and --secret-access-key",
			Suggestion: "Omit --keyring to use the AWS default credential chain",
		}
	}

	settings := config.Settings{
		Region:     w.currentRegion(),
		SecretName: w.opts.secretName,
		Endpoint:   w.cfg.Settings.Endpoint,
	}
	if err := config.Validate(settings); err != nil {
		return err
	}

	cred := secure.NewCredential([]byte(w.opts.secretAccessKey))
	defer cred.Destroy()
	if w.opts.accessKeyID != "" {
		settings.AccessKeyID = w.opts.accessKeyID
		settings.CredentialStore = config.CredentialStoreFile
		if w.opts.keyring {
			settings.CredentialStore = config.CredentialStoreKeyring
		}
	}

	storeCfg, err := w.storeConfig(settings, cred)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(w.cmd, w.cfg)
	defer cancel()

	store, err := secretstore.New(ctx, storeCfg, w.cfg.StoreOptions...)
	if err != nil {
		return err
	}

	if w.opts.create {
		if err := w.createSecret(store, settings.SecretName); err != nil {
			return err
		}
	} else if err := verifySecret(ctx, store); err != nil {
		return err
	}

	if err := w.save(settings, cred); err != nil {
		return err
	}
	fmt.Fprintf(w.out, "Configured %s in %s\n", settings.SecretName, settings.Region)
	return nil
}

func verifySecret(ctx context.Context, store *secretstore.Store) error {
	if _, err := store.Fetch(ctx); err != nil {
		return err
	}
	return nil
}
