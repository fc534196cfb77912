package fakes

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// FakeSecretsManagerClient is an in-memory implementation of
// secretstore.SecretsManagerClientAPI.
type FakeSecretsManagerClient struct {
	mu sync.Mutex

	// Secrets maps secret names to their data
	Secrets map[string]*SecretData
	// Errors maps secret names to errors returned by Get/Update
	Errors map[string]error
	// ListError is returned by ListSecrets when set
	ListError error
	// CreateError is returned by CreateSecret when set
	CreateError error
	// PageSize splits ListSecrets results into pages (0 = single page)
	PageSize int

	// GetSecretValueFunc allows custom behavior for GetSecretValue
	GetSecretValueFunc func(ctx context.Context, params *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error)
	// UpdateSecretFunc allows custom behavior for UpdateSecret
	UpdateSecretFunc func(ctx context.Context, params *secretsmanager.UpdateSecretInput) (*secretsmanager.UpdateSecretOutput, error)

	// Calls counts invocations per operation name
	Calls map[string]int
	// Updates records every SecretString passed to UpdateSecret
	Updates []string
	// GetInputs records every GetSecretValue input
	GetInputs []*secretsmanager.GetSecretValueInput
}

// SecretData holds the data for a mock secret
type SecretData struct {
	SecretString *string
	SecretBinary []byte
	VersionId    *string
	CreatedDate  *time.Time
}

// NewFakeSecretsManagerClient creates a new mock Secrets Manager client
func NewFakeSecretsManagerClient() *FakeSecretsManagerClient {
	return &FakeSecretsManagerClient{
		Secrets: make(map[string]*SecretData),
		Errors:  make(map[string]error),
		Calls:   make(map[string]int),
	}
}

// AddSecretString adds a string secret to the mock client
func (f *FakeSecretsManagerClient) AddSecretString(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	f.Secrets[name] = &SecretData{
		SecretString: aws.String(value),
		VersionId:    aws.String("v1-abc123"),
		CreatedDate:  &now,
	}
}

// AddEmptySecret adds a secret that exists but has no stored value
func (f *FakeSecretsManagerClient) AddEmptySecret(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	f.Secrets[name] = &SecretData{CreatedDate: &now}
}

// AddError configures the mock to return an error for a specific secret
func (f *FakeSecretsManagerClient) AddError(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errors[name] = err
}

// SecretString returns the stored string for name, or "" when absent
func (f *FakeSecretsManagerClient) SecretString(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if data, ok := f.Secrets[name]; ok {
		return aws.ToString(data.SecretString)
	}
	return ""
}

// CallCount returns how many times an operation was invoked
func (f *FakeSecretsManagerClient) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[op]
}

func (f *FakeSecretsManagerClient) record(op string) {
	if f.Calls == nil {
		f.Calls = make(map[string]int)
	}
	f.Calls[op]++
}

func notFound(name string) error {
	return &types.ResourceNotFoundException{
		Message: aws.String(fmt.Sprintf("Secrets Manager can't find the specified secret: %s", name)),
	}
}

// GetSecretValue mocks the GetSecretValue operation
func (f *FakeSecretsManagerClient) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.mu.Lock()
	f.record("GetSecretValue")
	f.GetInputs = append(f.GetInputs, params)
	custom := f.GetSecretValueFunc
	f.mu.Unlock()

	if custom != nil {
		return custom(ctx, params)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	secretName := aws.ToString(params.SecretId)
	if err, exists := f.Errors[secretName]; exists {
		return nil, err
	}

	data, exists := f.Secrets[secretName]
	if !exists {
		return nil, notFound(secretName)
	}

	return &secretsmanager.GetSecretValueOutput{
		ARN:           aws.String(arnFor(secretName)),
		Name:          params.SecretId,
		SecretString:  data.SecretString,
		SecretBinary:  data.SecretBinary,
		VersionId:     data.VersionId,
		VersionStages: []string{"AWSCURRENT"},
		CreatedDate:   data.CreatedDate,
	}, nil
}

// ListSecrets mocks the ListSecrets operation, honoring PageSize
func (f *FakeSecretsManagerClient) ListSecrets(ctx context.Context, params *secretsmanager.ListSecretsInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.ListSecretsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListSecrets")

	if f.ListError != nil {
		return nil, f.ListError
	}

	names := make([]string, 0, len(f.Secrets))
	for name := range f.Secrets {
		names = append(names, name)
	}
	sort.Strings(names)

	start := 0
	if params.NextToken != nil {
		n, err := strconv.Atoi(*params.NextToken)
		if err != nil {
			return nil, fmt.Errorf("invalid next token %q", *params.NextToken)
		}
		start = n
	}
	end := len(names)
	if f.PageSize > 0 && start+f.PageSize < end {
		end = start + f.PageSize
	}

	out := &secretsmanager.ListSecretsOutput{}
	for _, name := range names[start:end] {
		out.SecretList = append(out.SecretList, types.SecretListEntry{
			Name: aws.String(name),
			ARN:  aws.String(arnFor(name)),
		})
	}
	if end < len(names) {
		out.NextToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

// CreateSecret mocks the CreateSecret operation
func (f *FakeSecretsManagerClient) CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateSecret")

	if f.CreateError != nil {
		return nil, f.CreateError
	}

	name := aws.ToString(params.Name)
	if _, exists := f.Secrets[name]; exists {
		return nil, &types.ResourceExistsException{
			Message: aws.String(fmt.Sprintf("The operation failed because the secret %s already exists.", name)),
		}
	}

	now := time.Now()
	f.Secrets[name] = &SecretData{
		SecretString: params.SecretString,
		VersionId:    aws.String("v1-created"),
		CreatedDate:  &now,
	}
	return &secretsmanager.CreateSecretOutput{
		ARN:       aws.String(arnFor(name)),
		Name:      aws.String(name),
		VersionId: aws.String("v1-created"),
	}, nil
}

// UpdateSecret mocks the UpdateSecret operation
func (f *FakeSecretsManagerClient) UpdateSecret(ctx context.Context, params *secretsmanager.UpdateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.UpdateSecretOutput, error) {
	f.mu.Lock()
	f.record("UpdateSecret")
	f.Updates = append(f.Updates, aws.ToString(params.SecretString))
	custom := f.UpdateSecretFunc
	f.mu.Unlock()

	if custom != nil {
		return custom(ctx, params)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	secretName := aws.ToString(params.SecretId)
	if err, exists := f.Errors[secretName]; exists {
		return nil, err
	}

	data, exists := f.Secrets[secretName]
	if !exists {
		return nil, notFound(secretName)
	}
	data.SecretString = params.SecretString
	data.SecretBinary = nil
	data.VersionId = aws.String(fmt.Sprintf("v%d", len(f.Updates)+1))

	return &secretsmanager.UpdateSecretOutput{
		ARN:       aws.String(arnFor(secretName)),
		Name:      params.SecretId,
		VersionId: data.VersionId,
	}, nil
}

func arnFor(name string) string {
	return fmt.Sprintf("arn:aws:secretsmanager:us-east-1:123456789012:secret:%s", name)
}

// FakeSTSClient implements secretstore.IdentityClientAPI
type FakeSTSClient struct {
	Account string
	Arn     string
	UserId  string
	Err     error
}

// NewFakeSTSClient returns an STS fake for a fixed test principal
func NewFakeSTSClient() *FakeSTSClient {
	return &FakeSTSClient{
		Account: "123456789012",
		Arn:     "arn:aws:iam::123456789012:user/dev",
		UserId:  "AIDAEXAMPLE",
	}
}

// GetCallerIdentity mocks the GetCallerIdentity operation
func (f *FakeSTSClient) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return &sts.GetCallerIdentityOutput{
		Account: aws.String(f.Account),
		Arn:     aws.String(f.Arn),
		UserId:  aws.String(f.UserId),
	}, nil
}
