package config

import (
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/viper"
	"github.com/systmms/aws-secrets/internal/errors"
	"github.com/systmms/aws-secrets/internal/logging"
	"github.com/systmms/aws-secrets/internal/secretstore"
)

// DefaultPath is the configuration file looked up in the working directory.
const DefaultPath = ".secrets-config.json"

// DefaultRegion is offered by the setup wizard when nothing is configured.
const DefaultRegion = "us-east-1"

// DefaultTimeout bounds each command's network work.
const DefaultTimeout = 30 * time.Second

// Credential stores for the secret access key.
const (
	CredentialStoreFile    = "file"
	CredentialStoreKeyring = "keyring"
)

// Environment variables that override values from the file.
const (
	EnvRegion     = "AWS_SECRETS_REGION"
	EnvSecretName = "AWS_SECRETS_SECRET_NAME"
	EnvEndpoint   = "AWS_SECRETS_ENDPOINT"
)

// Config holds the runtime configuration
type Config struct {
	Path           string
	Logger         *logging.Logger
	NonInteractive bool
	MetricsFile    string
	Timeout        time.Duration

	// Settings is the persisted configuration after Load.
	Settings Settings

	// StoreOptions are passed to every secretstore.New call (tests inject
	// fake clients here).
	StoreOptions []secretstore.Option

	loaded bool
}

// Settings mirrors .secrets-config.json.
type Settings struct {
	Region          string `json:"region" mapstructure:"region"`
	SecretName      string `json:"secretName" mapstructure:"secretName"`
	AccessKeyID     string `json:"accessKeyId,omitempty" mapstructure:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey,omitempty" mapstructure:"secretAccessKey"`
	CredentialStore string `json:"credentialStore,omitempty" mapstructure:"credentialStore"`
	Endpoint        string `json:"endpoint,omitempty" mapstructure:"endpoint"`
}

// Complete reports whether region and secret name are both set.
func (s Settings) Complete() bool {
	return s.Region != "" && s.SecretName != ""
}

// UsesKeyring reports whether the secret access key lives in the OS keychain.
func (s Settings) UsesKeyring() bool {
	return s.CredentialStore == CredentialStoreKeyring
}

// Load reads the configuration file. A missing file yields empty settings;
// environment overrides apply either way.
func (c *Config) Load() error {
	if c.loaded {
		return nil
	}

	path := c.path()
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	_ = v.BindEnv("region", EnvRegion)
	_ = v.BindEnv("secretName", EnvSecretName)
	_ = v.BindEnv("endpoint", EnvEndpoint)

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			var pathErr *fs.PathError
			if stderrors.As(err, &pathErr) {
				return errors.Normalize(errors.KindFilesystem, "read configuration", err)
			}
			return &errors.Error{Kind: errors.KindFormat, Op: "read configuration", Message: path + " is not valid JSON", Err: err}
		}
	} else if !stderrors.Is(err, fs.ErrNotExist) {
		return errors.Normalize(errors.KindFilesystem, "read configuration", err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return errors.Normalize(errors.KindFormat, "read configuration", err)
	}

	c.Settings = s
	c.loaded = true
	if c.Logger != nil {
		c.Logger.Debug("Loaded configuration from %s (region=%q secret=%q)", path, s.Region, s.SecretName)
	}
	return nil
}

// Require fails unless region and secret name are configured.
func (c *Config) Require() error {
	if err := c.Load(); err != nil {
		return err
	}
	if !c.Settings.Complete() {
		return errors.New(errors.KindConfiguration, "Configuration not found. Please run: aws-secrets init")
	}
	return nil
}

// Save validates s and writes it to the configuration file. With the
// keyring credential store the secret access key goes to the OS keychain
// and is left out of the file. A keychain entry the previous settings used
// is removed once nothing refers to it.
func (c *Config) Save(s Settings) error {
	if err := Validate(s); err != nil {
		return err
	}

	if s.UsesKeyring() && s.AccessKeyID == "" {
		return errors.New(errors.KindConfiguration, "Invalid configuration: accessKeyId is required when credentialStore is keyring")
	}

	onDisk := s
	if s.UsesKeyring() && s.SecretAccessKey != "" {
		if err := storeSecretKey(s.AccessKeyID, s.SecretAccessKey); err != nil {
			return err
		}
		onDisk.SecretAccessKey = ""
	}

	data, err := json.MarshalIndent(onDisk, "", "  ")
	if err != nil {
		return errors.Normalize(errors.KindFormat, "save configuration", err)
	}
	data = append(data, '\n')

	path := c.path()
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Normalize(errors.KindFilesystem, "save configuration", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0600); err != nil {
		return errors.Normalize(errors.KindFilesystem, "save configuration", err)
	}

	prev := c.Settings
	c.Settings = s
	c.loaded = true
	if c.Logger != nil {
		c.Logger.Debug("Saved configuration to %s", path)
	}

	if prev.UsesKeyring() && prev.AccessKeyID != "" &&
		(!s.UsesKeyring() || prev.AccessKeyID != s.AccessKeyID) {
		if err := ForgetSecretKey(prev.AccessKeyID); err != nil && c.Logger != nil {
			c.Logger.Warn("Could not remove the previous key from the system keychain: %s", errors.MessageOf(err))
		}
	}
	return nil
}

// StoreConfig turns the settings into a secret store configuration,
// resolving the secret access key from the keychain when needed.
func (c *Config) StoreConfig() (secretstore.StoreConfig, error) {
	s := c.Settings
	cfg := secretstore.StoreConfig{
		Region:          s.Region,
		SecretID:        s.SecretName,
		AccessKeyID:     s.AccessKeyID,
		SecretAccessKey: s.SecretAccessKey,
		Endpoint:        s.Endpoint,
	}

	if s.UsesKeyring() && s.AccessKeyID != "" && cfg.SecretAccessKey == "" {
		key, err := loadSecretKey(s.AccessKeyID)
		if err != nil {
			return secretstore.StoreConfig{}, err
		}
		cfg.SecretAccessKey = key
	}
	return cfg, nil
}

// TimeoutOrDefault returns the per-command network timeout.
func (c *Config) TimeoutOrDefault() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c *Config) path() string {
	if c.Path == "" {
		return DefaultPath
	}
	return c.Path
}
