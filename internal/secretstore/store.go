// Package secretstore is the AWS Secrets Manager adapter. It keeps one
// secret's payload as a flat JSON object and exposes typed list, create,
// fetch and update operations.
package secretstore

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/systmms/aws-secrets/internal/errors"
	"github.com/systmms/aws-secrets/internal/secrets"
	"github.com/systmms/aws-secrets/internal/secure"
)

const currentStage = "AWSCURRENT"

// SecretsManagerClientAPI defines the Secrets Manager operations the store uses.
// This allows for mocking in tests
type SecretsManagerClientAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	ListSecrets(ctx context.Context, params *secretsmanager.ListSecretsInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.ListSecretsOutput, error)
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
	UpdateSecret(ctx context.Context, params *secretsmanager.UpdateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.UpdateSecretOutput, error)
}

// IdentityClientAPI is the STS subset used to confirm which principal the
// configured credentials resolve to.
type IdentityClientAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// StoreConfig is the immutable connection configuration of a Store.
type StoreConfig struct {
	Region          string
	SecretID        string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint overrides the service endpoint (LocalStack and similar).
	Endpoint string
}

// HasStaticCredentials reports whether both halves of an access key pair are set.
func (c StoreConfig) HasStaticCredentials() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// Descriptor identifies one secret visible to the configured credentials.
type Descriptor struct {
	Name string
	ARN  string
}

// Identity is the principal behind the configured credentials.
type Identity struct {
	Account string
	ARN     string
	UserID  string
}

// Store talks to AWS Secrets Manager on behalf of one secret.
type Store struct {
	cfg      StoreConfig
	secretID string

	client   SecretsManagerClientAPI
	identity IdentityClientAPI

	factory ClientFactory
}

// New creates a Store and builds its clients from cfg.
func New(ctx context.Context, cfg StoreConfig, opts ...Option) (*Store, error) {
	s := &Store{factory: newAWSClients}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Configure(ctx, cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// Configure replaces the configuration wholesale and rebuilds the clients.
// A non-empty SecretID becomes the active secret; otherwise the previously
// active secret is kept.
func (s *Store) Configure(ctx context.Context, cfg StoreConfig) error {
	clients, err := s.factory(ctx, cfg)
	if err != nil {
		return errors.Normalize(errors.KindConfiguration, "configure client", err)
	}

	s.cfg = cfg
	s.client = clients.SecretsManager
	s.identity = clients.Identity
	if cfg.SecretID != "" {
		s.secretID = cfg.SecretID
	}
	return nil
}

// Config returns the configuration the clients were last built from.
func (s *Store) Config() StoreConfig {
	return s.cfg
}

// SecretID returns the active secret identifier, if any.
func (s *Store) SecretID() string {
	return s.secretID
}

// ListAll returns every secret visible to the configured credentials.
// The result is never nil.
func (s *Store) ListAll(ctx context.Context) ([]Descriptor, error) {
	out := []Descriptor{}

	paginator := secretsmanager.NewListSecretsPaginator(s.client, &secretsmanager.ListSecretsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Normalize(errors.KindTransport, "list secrets", err)
		}
		for _, entry := range page.SecretList {
			out = append(out, Descriptor{
				Name: aws.ToString(entry.Name),
				ARN:  aws.ToString(entry.ARN),
			})
		}
	}

	return out, nil
}

// Create creates a new secret holding an empty JSON object. Creating a name
// that already exists fails.
func (s *Store) Create(ctx context.Context, name string) error {
	_, err := s.client.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(name),
		SecretString: aws.String("{}"),
	})
	if err != nil {
		return errors.Normalize(errors.KindTransport, "create secret", err)
	}
	return nil
}

// Fetch reads the current payload of the active secret. A secret without a
// stored payload yields an empty map.
func (s *Store) Fetch(ctx context.Context) (*secrets.Map, error) {
	if s.secretID == "" {
		return nil, errors.ErrSecretNameNotConfigured
	}

	result, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(s.secretID),
		VersionStage: aws.String(currentStage),
	})
	if err != nil {
		return nil, errors.Normalize(errors.KindTransport, "fetch secrets", err)
	}

	var payload []byte
	if result.SecretString != nil {
		payload = []byte(*result.SecretString)
		defer secure.Wipe(payload)
	} else if result.SecretBinary != nil {
		payload = result.SecretBinary
	}
	if len(payload) == 0 {
		return secrets.New(), nil
	}

	m := secrets.New()
	if err := json.Unmarshal(payload, m); err != nil {
		return nil, errors.Normalize(errors.KindFormat, "fetch secrets", err)
	}
	return m, nil
}

// Update replaces the active secret's payload with m in a single call.
func (s *Store) Update(ctx context.Context, m *secrets.Map) error {
	if s.secretID == "" {
		return errors.ErrSecretNameNotConfigured
	}
	if m == nil {
		m = secrets.New()
	}

	payload, err := json.Marshal(m)
	if err != nil {
		return errors.Normalize(errors.KindFormat, "update secrets", err)
	}
	defer secure.Wipe(payload)

	_, err = s.client.UpdateSecret(ctx, &secretsmanager.UpdateSecretInput{
		SecretId:     aws.String(s.secretID),
		SecretString: aws.String(string(payload)),
	})
	if err != nil {
		return errors.Normalize(errors.KindTransport, "update secrets", err)
	}
	return nil
}

// Identity resolves the principal behind the configured credentials.
func (s *Store) Identity(ctx context.Context) (Identity, error) {
	if s.identity == nil {
		return Identity{}, errors.New(errors.KindConfiguration, "identity client is not configured")
	}

	out, err := s.identity.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return Identity{}, errors.Normalize(errors.KindTransport, "resolve identity", err)
	}
	return Identity{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
		UserID:  aws.ToString(out.UserId),
	}, nil
}
