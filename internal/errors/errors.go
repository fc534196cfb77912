package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
)

// UnknownMessage is used when a failure carries no message of its own.
const UnknownMessage = "Unknown error"

// Kind classifies an error so callers can branch without parsing text.
type Kind int

const (
	KindUnknown Kind = iota
	// KindConfiguration covers missing or invalid local configuration.
	KindConfiguration
	// KindTransport covers the secret store being unreachable or rejecting a request.
	KindTransport
	// KindFormat covers malformed payloads and files.
	KindFormat
	// KindFilesystem covers local file reads and writes.
	KindFilesystem
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindTransport:
		return "transport"
	case KindFormat:
		return "format"
	case KindFilesystem:
		return "filesystem"
	default:
		return "unknown"
	}
}

// Error is the typed error returned by the store adapter, the codec and the
// configuration layer. When Op is set the message reads "Failed to <Op>: <Message>".
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = UnknownMessage
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("Failed to %s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrSecretNameNotConfigured is returned by secret reads and writes when the
// adapter has no active secret identifier.
var ErrSecretNameNotConfigured = &Error{
	Kind:    KindConfiguration,
	Message: "Secret name is not configured",
}

// New returns an error of the given kind without an underlying cause.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Normalize wraps err as an *Error with a guaranteed, human-readable message.
func Normalize(kind Kind, op string, err error) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: MessageOf(err),
		Err:     err,
	}
}

// MessageOf extracts the most useful message from err. AWS API errors yield
// their service message, other errors their text, and anything without a
// message yields UnknownMessage.
func MessageOf(err error) string {
	if err == nil {
		return UnknownMessage
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if msg := strings.TrimSpace(apiErr.ErrorMessage()); msg != "" {
			return msg
		}
		if code := apiErr.ErrorCode(); code != "" {
			return code
		}
	}

	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return UnknownMessage
}

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Code returns the AWS error code in err's chain, if any.
func Code(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// Present attaches a suggestion to err when one is known. Errors that are
// already a UserError are returned unchanged.
func Present(err error) error {
	if err == nil {
		return nil
	}
	var ue UserError
	if errors.As(err, &ue) {
		return err
	}

	suggestion := Suggest(err)
	if suggestion == "" {
		return err
	}
	return UserError{Message: err.Error(), Suggestion: suggestion, Err: err}
}

// Suggest returns a hint for common secret store and configuration failures.
func Suggest(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, ErrSecretNameNotConfigured) {
		return "Run 'aws-secrets init' to select a secret"
	}

	switch Code(err) {
	case "AccessDeniedException", "AccessDenied", "UnrecognizedClientException":
		return "Check IAM permissions for secretsmanager:GetSecretValue, UpdateSecret, ListSecrets and CreateSecret"
	case "ResourceNotFoundException":
		return "Verify the secret name and region, or run 'aws-secrets init' to pick another secret"
	case "ResourceExistsException":
		return "A secret with that name already exists. Choose it with 'Use existing secret' instead"
	case "ThrottlingException":
		return "AWS rate limit exceeded. Wait a moment and try again"
	case "ExpiredTokenException", "InvalidSignatureException":
		return "Refresh your AWS credentials: 'aws sso login' or 'aws configure'"
	}

	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "failed to retrieve credentials"),
		strings.Contains(errStr, "no EC2 IMDS role found"):
		return "Configure AWS credentials: 'aws configure' or set AWS_PROFILE, or re-run 'aws-secrets init' with manual credentials"
	case strings.Contains(errStr, "timeout"):
		return "The operation timed out. Check your network connection and try again"
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host"):
		return "Unable to connect. Check your network and region configuration"
	}

	if IsKind(err, KindConfiguration) {
		return "Run 'aws-secrets init' to create or repair the configuration"
	}

	return ""
}
