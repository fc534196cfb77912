package config

import (
	stderrors "errors"

	"github.com/systmms/aws-secrets/internal/errors"
	"github.com/zalando/go-keyring"
)

// KeyringService is the keychain service name secret access keys are stored under.
const KeyringService = "aws-secrets"

func storeSecretKey(accessKeyID, secretKey string) error {
	if err := keyring.Set(KeyringService, accessKeyID, secretKey); err != nil {
		return errors.Normalize(errors.KindConfiguration, "store credentials in keychain", err)
	}
	return nil
}

func loadSecretKey(accessKeyID string) (string, error) {
	secret, err := keyring.Get(KeyringService, accessKeyID)
	if err != nil {
		if stderrors.Is(err, keyring.ErrNotFound) {
			return "", errors.New(errors.KindConfiguration,
				"Secret access key for %s not found in the system keychain. Please run: aws-secrets init", accessKeyID)
		}
		return "", errors.Normalize(errors.KindConfiguration, "read credentials from keychain", err)
	}
	return secret, nil
}

// ForgetSecretKey removes a stored secret access key. A missing entry is not an error.
func ForgetSecretKey(accessKeyID string) error {
	err := keyring.Delete(KeyringService, accessKeyID)
	if err != nil && !stderrors.Is(err, keyring.ErrNotFound) {
		return errors.Normalize(errors.KindConfiguration, "remove credentials from keychain", err)
	}
	return nil
}
