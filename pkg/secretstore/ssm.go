package secretstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

type ssmAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
}

// SSM is a Store backed by SSM Parameter Store.
type SSM struct {
	client ssmAPI
}

var _ Store = (*SSM)(nil)

func NewSSM(client ssmAPI) *SSM {
	return &SSM{client: client}
}

// NewSSMFromConfig builds an SSM store from the default AWS configuration chain.
func NewSSMFromConfig(ctx context.Context, opts ClientOptions) (*SSM, error) {
	cfg, err := loadAWSConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	endpoint := strings.TrimSpace(opts.EndpointURL)
	client := ssm.NewFromConfig(cfg, func(o *ssm.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewSSM(client), nil
}

func (s *SSM) Get(ctx context.Context, name string, decrypt bool) (string, error) {
	if s == nil || s.client == nil {
		return "", errors.New("secretstore: ssm client is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty parameter name", ErrNotFound)
	}

	out, err := s.client.GetParameter(ensureContext(ctx), &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(decrypt),
	})
	if err != nil {
		return "", classify("get", name, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("%w: parameter %q has no value", ErrNotFound, name)
	}
	return aws.ToString(out.Parameter.Value), nil
}

func (s *SSM) Put(ctx context.Context, name, value string) error {
	if s == nil || s.client == nil {
		return errors.New("secretstore: ssm client is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("secretstore: empty parameter name")
	}

	_, err := s.client.PutParameter(ensureContext(ctx), &ssm.PutParameterInput{
		Name:      aws.String(name),
		Value:     aws.String(value),
		Type:      ssmtypes.ParameterTypeString,
		Overwrite: aws.Bool(true),
	})
	if err != nil {
		return classify("put", name, err)
	}
	return nil
}
