package secretstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type secretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
}

// SecretsManager is a Store backed by AWS Secrets Manager, for keys imported outside EC2. Values
// are always decrypted by the service, so the decrypt flag is ignored.
type SecretsManager struct {
	client secretsManagerAPI
}

var _ Store = (*SecretsManager)(nil)

func NewSecretsManager(client secretsManagerAPI) *SecretsManager {
	return &SecretsManager{client: client}
}

func NewSecretsManagerFromConfig(ctx context.Context, opts ClientOptions) (*SecretsManager, error) {
	cfg, err := loadAWSConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	endpoint := strings.TrimSpace(opts.EndpointURL)
	client := secretsmanager.NewFromConfig(cfg, func(o *secretsmanager.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewSecretsManager(client), nil
}

func (s *SecretsManager) Get(ctx context.Context, name string, _ bool) (string, error) {
	if s == nil || s.client == nil {
		return "", errors.New("secretstore: secrets manager client is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty secret id", ErrNotFound)
	}

	out, err := s.client.GetSecretValue(ensureContext(ctx), &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", classify("get", name, err)
	}
	switch {
	case out == nil:
		return "", fmt.Errorf("%w: secret %q has no value", ErrNotFound, name)
	case out.SecretString != nil:
		return aws.ToString(out.SecretString), nil
	case out.SecretBinary != nil:
		return string(out.SecretBinary), nil
	default:
		return "", fmt.Errorf("%w: secret %q has no value", ErrNotFound, name)
	}
}

// Put adds a new version of an existing secret.
func (s *SecretsManager) Put(ctx context.Context, name, value string) error {
	if s == nil || s.client == nil {
		return errors.New("secretstore: secrets manager client is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("secretstore: empty secret id")
	}

	_, err := s.client.PutSecretValue(ensureContext(ctx), &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(name),
		SecretString: aws.String(value),
	})
	if err != nil {
		return classify("put", name, err)
	}
	return nil
}
