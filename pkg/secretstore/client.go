package secretstore

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/smithy-go"
)

// Backend names a Store implementation.
type Backend string

const (
	BackendSSM            Backend = "ssm"
	BackendSecretsManager Backend = "secretsmanager"
)

const (
	EnvBackend         = "SECRET_STORE_BACKEND"
	EnvEndpointURL     = "SSM_ENDPOINT_URL"
	EnvAccessKeyID     = "SSM_ACCESS_KEY_ID"
	EnvSecretAccessKey = "SSM_SECRET_ACCESS_KEY"
	envRegion          = "AWS_REGION"
)

// ClientOptions tunes AWS client construction.
type ClientOptions struct {
	Backend Backend
	Region  string

	// EndpointURL points the client at a local emulator.
	EndpointURL string

	// AccessKeyID and SecretAccessKey, when both set, replace the default credential chain.
	AccessKeyID     string
	SecretAccessKey string
}

// ClientOptionsFromEnv reads ClientOptions from AWS_REGION, SECRET_STORE_BACKEND and the SSM_*
// overrides. Static credentials are only honoured together with an endpoint override.
func ClientOptionsFromEnv(lookup func(string) (string, bool)) ClientOptions {
	get := func(key string) string {
		if lookup == nil {
			return ""
		}
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	opts := ClientOptions{
		Backend:     Backend(strings.ToLower(get(EnvBackend))),
		Region:      get(envRegion),
		EndpointURL: get(EnvEndpointURL),
	}
	if opts.EndpointURL != "" {
		opts.AccessKeyID = get(EnvAccessKeyID)
		opts.SecretAccessKey = get(EnvSecretAccessKey)
	}
	return opts
}

// NewFromConfig builds the Store selected by opts.Backend. SSM is the default.
func NewFromConfig(ctx context.Context, opts ClientOptions) (Store, error) {
	switch opts.Backend {
	case "", BackendSSM:
		store, err := NewSSMFromConfig(ctx, opts)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendSecretsManager:
		store, err := NewSecretsManagerFromConfig(ctx, opts)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("secretstore: unsupported backend %q", opts.Backend)
	}
}

func loadAWSConfig(ctx context.Context, opts ClientOptions) (aws.Config, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region := strings.TrimSpace(opts.Region); region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ensureContext(ctx), loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("secretstore: load aws config: %w", err)
	}
	return cfg, nil
}

// classify maps SDK failures onto the package sentinels. Unrecognised API errors keep only
// their original chain.
func classify(op, name string, err error) error {
	if kind := kindOf(err); kind != nil {
		return fmt.Errorf("%w: %s %q: %w", kind, op, name, err)
	}
	return fmt.Errorf("secretstore: %s %q: %w", op, name, err)
}

func kindOf(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrUnavailable
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ParameterNotFound", "ParameterVersionNotFound", "ResourceNotFoundException":
			return ErrNotFound
		case "AccessDeniedException", "AccessDenied", "InvalidKeyId", "DecryptionFailure",
			"UnrecognizedClientException", "ExpiredTokenException":
			return ErrAccessDenied
		case "ThrottlingException", "TooManyUpdates", "InternalServerError", "InternalServiceError",
			"ServiceUnavailable", "RequestTimeout":
			return ErrUnavailable
		}
		if apiErr.ErrorFault() == smithy.FaultServer {
			return ErrUnavailable
		}
		return nil
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrUnavailable
	}
	var exhausted *retry.MaxAttemptsError
	if errors.As(err, &exhausted) {
		return ErrUnavailable
	}
	return nil
}
