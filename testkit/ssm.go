package testkit

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

type SSMGetCall struct {
	Name           string
	WithDecryption bool
}

type SSMPutCall struct {
	Name      string
	Value     string
	Overwrite bool
}

// FakeSSMClient is an in-memory Parameter Store double that speaks the SDK's input/output types.
type FakeSSMClient struct {
	mu sync.Mutex

	Parameters map[string]string
	GetCalls   []SSMGetCall
	PutCalls   []SSMPutCall

	// GetErr and PutErr, when set, are returned instead of touching Parameters.
	GetErr error
	PutErr error

	version int64
}

func NewFakeSSMClient() *FakeSSMClient {
	return &FakeSSMClient{Parameters: map[string]string{}}
}

// Seed stores a parameter value without recording a call.
func (f *FakeSSMClient) Seed(name, value string) *FakeSSMClient {
	f.mu.Lock()
	f.Parameters[name] = value
	f.mu.Unlock()
	return f
}

func (f *FakeSSMClient) GetParameter(
	_ context.Context,
	params *ssm.GetParameterInput,
	_ ...func(*ssm.Options),
) (*ssm.GetParameterOutput, error) {
	if f == nil {
		return nil, errors.New("testkit: ssm client is nil")
	}
	if params == nil {
		return nil, errors.New("testkit: get parameter input is nil")
	}

	name := strings.TrimSpace(aws.ToString(params.Name))

	f.mu.Lock()
	f.GetCalls = append(f.GetCalls, SSMGetCall{Name: name, WithDecryption: aws.ToBool(params.WithDecryption)})
	value, ok := f.Parameters[name]
	err := f.GetErr
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ssmtypes.ParameterNotFound{Message: aws.String("parameter " + name + " not found")}
	}

	return &ssm.GetParameterOutput{
		Parameter: &ssmtypes.Parameter{
			Name:    aws.String(name),
			Value:   aws.String(value),
			Type:    ssmtypes.ParameterTypeSecureString,
			Version: 1,
		},
	}, nil
}

func (f *FakeSSMClient) PutParameter(
	_ context.Context,
	params *ssm.PutParameterInput,
	_ ...func(*ssm.Options),
) (*ssm.PutParameterOutput, error) {
	if f == nil {
		return nil, errors.New("testkit: ssm client is nil")
	}
	if params == nil {
		return nil, errors.New("testkit: put parameter input is nil")
	}

	name := strings.TrimSpace(aws.ToString(params.Name))
	value := aws.ToString(params.Value)
	overwrite := aws.ToBool(params.Overwrite)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.PutCalls = append(f.PutCalls, SSMPutCall{Name: name, Value: value, Overwrite: overwrite})
	if f.PutErr != nil {
		return nil, f.PutErr
	}
	if _, exists := f.Parameters[name]; exists && !overwrite {
		return nil, &ssmtypes.ParameterAlreadyExists{Message: aws.String("parameter " + name + " already exists")}
	}
	f.Parameters[name] = value
	f.version++

	return &ssm.PutParameterOutput{Version: f.version}, nil
}
