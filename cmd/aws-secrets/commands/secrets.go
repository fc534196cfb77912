package commands

import (
	"context"
	"time"

	"github.com/systmms/aws-secrets/internal/config"
	"github.com/systmms/aws-secrets/internal/dotenv"
	"github.com/systmms/aws-secrets/internal/errors"
	"github.com/systmms/aws-secrets/internal/secrets"
)

// fetchSecrets reads the configured secret.
func fetchSecrets(ctx context.Context, cfg *config.Config) (*secrets.Map, error) {
	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return store.Fetch(ctx)
}

// mutateSecrets fetches the secret, applies fn and writes the result back
// when fn reports a change.
func mutateSecrets(ctx context.Context, cfg *config.Config, fn func(m *secrets.Map) bool) (*secrets.Map, bool, error) {
	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, false, err
	}

	m, err := store.Fetch(ctx)
	if err != nil {
		return nil, false, err
	}
	if !fn(m) {
		return m, false, nil
	}
	if err := store.Update(ctx, m); err != nil {
		return nil, false, err
	}
	return m, true, nil
}

// writeEnvFile writes m to filename with the standard header. Keys the
// file format cannot carry are skipped with a warning. It returns the
// number of keys written.
func writeEnvFile(cfg *config.Config, filename, environment string, m *secrets.Map) (int, error) {
	out := secrets.New()
	for key, value := range m.All() {
		if err := dotenv.CheckKey(key); err != nil {
			cfg.Logger.Warn("Skipping key %q: %s", key, errors.MessageOf(err))
			continue
		}
		out.Set(key, value)
	}

	err := dotenv.WriteFile(filename, out, dotenv.Header{
		Environment: environment,
		GeneratedAt: time.Now(),
	})
	if err != nil {
		return 0, err
	}
	return out.Len(), nil
}

func validateKey(key string) error {
	if err := dotenv.CheckKey(key); err != nil {
		return errors.UserError{
			Message:    errors.MessageOf(err),
			Details:    "Keys are written to .env files as KEY=\"value\"",
			Suggestion: "Rename the key, e.g. DATABASE_URL",
		}
	}
	return nil
}
