package testutil

import (
	"os"
	"testing"

	"github.com/systmms/aws-secrets/internal/config"
)

// awsEnv lists variables that change how configuration and credentials
// resolve on a developer machine.
var awsEnv = []string{
	config.EnvRegion,
	config.EnvSecretName,
	config.EnvEndpoint,
	"AWS_PROFILE",
	"AWS_REGION",
	"AWS_DEFAULT_REGION",
	"AWS_ACCESS_KEY_ID",
	"AWS_SECRET_ACCESS_KEY",
	"AWS_SESSION_TOKEN",
	"NO_COLOR",
}

// IsolateEnv unsets the AWS and aws-secrets variables for the duration of
// a test. Values are restored by t.Cleanup.
//
// Like t.Setenv, it must not be used in parallel tests.
func IsolateEnv(t *testing.T) {
	t.Helper()

	for _, key := range awsEnv {
		orig, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("Failed to unset environment variable %s: %v", key, err)
		}
		t.Cleanup(func() {
			if err := os.Setenv(key, orig); err != nil {
				t.Errorf("Failed to restore environment variable %s: %v", key, err)
			}
		})
	}
}
