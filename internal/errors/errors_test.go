package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/aws-secrets/internal/errors"
)

type emptyError struct{}

func (emptyError) Error() string { return "" }

func TestErrorFormatting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *errors.Error
		want string
	}{
		{
			name: "with_operation",
			err:  &errors.Error{Kind: errors.KindTransport, Op: "list secrets", Message: "boom"},
			want: "Failed to list secrets: boom",
		},
		{
			name: "without_operation",
			err:  &errors.Error{Kind: errors.KindConfiguration, Message: "Secret name is not configured"},
			want: "Secret name is not configured",
		},
		{
			name: "empty_message",
			err:  &errors.Error{Kind: errors.KindTransport, Op: "update secrets"},
			want: "Failed to update secrets: Unknown error",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("plain_error", func(t *testing.T) {
		t.Parallel()
		cause := fmt.Errorf("dial tcp: connection refused")
		err := errors.Normalize(errors.KindTransport, "list secrets", cause)

		assert.Equal(t, "Failed to list secrets: dial tcp: connection refused", err.Error())
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, errors.KindTransport, err.Kind)
	})

	t.Run("api_error_uses_service_message", func(t *testing.T) {
		t.Parallel()
		cause := &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "not authorized"}
		wrapped := fmt.Errorf("operation error Secrets Manager: ListSecrets, %w", cause)

		err := errors.Normalize(errors.KindTransport, "list secrets", wrapped)
		assert.Equal(t, "Failed to list secrets: not authorized", err.Error())
	})

	t.Run("api_error_without_message_uses_code", func(t *testing.T) {
		t.Parallel()
		cause := &smithy.GenericAPIError{Code: "ThrottlingException"}
		err := errors.Normalize(errors.KindTransport, "fetch secrets", cause)
		assert.Equal(t, "Failed to fetch secrets: ThrottlingException", err.Error())
	})

	t.Run("messageless_error", func(t *testing.T) {
		t.Parallel()
		err := errors.Normalize(errors.KindTransport, "list secrets", emptyError{})
		assert.Equal(t, "Failed to list secrets: Unknown error", err.Error())
	})

	t.Run("nil_error", func(t *testing.T) {
		t.Parallel()
		err := errors.Normalize(errors.KindTransport, "create secret", nil)
		assert.Equal(t, "Failed to create secret: Unknown error", err.Error())
	})
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("sync: %w", errors.New(errors.KindFilesystem, "File %s not found", ".env"))

	assert.Equal(t, errors.KindFilesystem, errors.KindOf(wrapped))
	assert.True(t, errors.IsKind(wrapped, errors.KindFilesystem))
	assert.False(t, errors.IsKind(wrapped, errors.KindFormat))
	assert.Equal(t, errors.KindUnknown, errors.KindOf(stderrors.New("plain")))
	assert.False(t, errors.IsKind(nil, errors.KindUnknown))
	assert.Equal(t, "filesystem", errors.KindFilesystem.String())
}

func TestSecretNameNotConfigured(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("add: %w", errors.ErrSecretNameNotConfigured)
	assert.Equal(t, "add: Secret name is not configured", err.Error())
	assert.True(t, errors.IsKind(err, errors.KindConfiguration))
	assert.Contains(t, errors.Suggest(err), "aws-secrets init")
}

// TestUserErrorFormatting verifies UserError displays properly
func TestUserErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.UserError{
		Message:    "Operation failed",
		Details:    "Connection timeout",
		Suggestion: "Check network connectivity",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "Operation failed")
	assert.Contains(t, errMsg, "Connection timeout")
	assert.Contains(t, errMsg, "Check network connectivity")
}

func TestPresent(t *testing.T) {
	t.Parallel()

	t.Run("adds_suggestion_for_aws_codes", func(t *testing.T) {
		t.Parallel()
		cause := &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "can't find the specified secret"}
		err := errors.Present(errors.Normalize(errors.KindTransport, "fetch secrets", cause))

		var ue errors.UserError
		require.ErrorAs(t, err, &ue)
		assert.Contains(t, ue.Error(), "Failed to fetch secrets: can't find the specified secret")
		assert.Contains(t, ue.Suggestion, "Verify the secret name")
		assert.Equal(t, errors.KindTransport, errors.KindOf(err))
	})

	t.Run("leaves_unknown_errors_alone", func(t *testing.T) {
		t.Parallel()
		cause := stderrors.New("something odd")
		assert.Same(t, cause, errors.Present(cause))
	})

	t.Run("keeps_user_errors", func(t *testing.T) {
		t.Parallel()
		ue := errors.UserError{Message: "Secret 'X' not found"}
		assert.Equal(t, ue, errors.Present(ue))
	})

	t.Run("nil", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, errors.Present(nil))
	})
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"access_denied", &smithy.GenericAPIError{Code: "AccessDeniedException"}, "IAM permissions"},
		{"exists", &smithy.GenericAPIError{Code: "ResourceExistsException"}, "already exists"},
		{"throttled", &smithy.GenericAPIError{Code: "ThrottlingException"}, "rate limit"},
		{"credentials", stderrors.New("failed to retrieve credentials: no providers"), "Configure AWS credentials"},
		{"network", stderrors.New("dial tcp: lookup x: no such host"), "Unable to connect"},
		{"configuration", errors.New(errors.KindConfiguration, "bad region"), "aws-secrets init"},
		{"nothing", stderrors.New("weird"), ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := errors.Suggest(tt.err)
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			assert.Contains(t, got, tt.want)
		})
	}
}
