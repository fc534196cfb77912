package secretstore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Clients is the set of service clients built for one StoreConfig.
type Clients struct {
	SecretsManager SecretsManagerClientAPI
	Identity       IdentityClientAPI
}

// ClientFactory builds clients for a configuration. Store.Configure calls
// it every time the configuration is replaced.
type ClientFactory func(ctx context.Context, cfg StoreConfig) (Clients, error)

// Option is a functional option for configuring a Store
type Option func(*Store)

// WithClientFactory replaces how clients are built (for testing).
func WithClientFactory(f ClientFactory) Option {
	return func(s *Store) {
		s.factory = f
	}
}

// WithClients makes the store use fixed clients regardless of configuration (for testing).
func WithClients(sm SecretsManagerClientAPI, id IdentityClientAPI) Option {
	return WithClientFactory(func(context.Context, StoreConfig) (Clients, error) {
		return Clients{SecretsManager: sm, Identity: id}, nil
	})
}

// newAWSClients loads the shared AWS configuration for cfg. Static
// credentials are used only when both halves are present; otherwise the
// default chain (environment, shared config and SSO profiles, IMDS) applies.
// SDK retries are disabled so every operation is a single attempt.
func newAWSClients(ctx context.Context, cfg StoreConfig) (Clients, error) {
	var configOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		configOpts = append(configOpts, config.WithRegion(cfg.Region))
	}
	if cfg.HasStaticCredentials() {
		configOpts = append(configOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	configOpts = append(configOpts, config.WithRetryMaxAttempts(1))

	awsCfg, err := config.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return Clients{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var smOpts []func(*secretsmanager.Options)
	var stsOpts []func(*sts.Options)
	if cfg.Endpoint != "" {
		smOpts = append(smOpts, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
		stsOpts = append(stsOpts, func(o *sts.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return Clients{
		SecretsManager: secretsmanager.NewFromConfig(awsCfg, smOpts...),
		Identity:       sts.NewFromConfig(awsCfg, stsOpts...),
	}, nil
}
