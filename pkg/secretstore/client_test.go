package secretstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientOptionsFromEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"AWS_REGION":       "us-east-1",
		EnvAccessKeyID:     "test",
		EnvSecretAccessKey: "test",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	require.Equal(t, ClientOptions{Region: "us-east-1"}, ClientOptionsFromEnv(lookup))

	env[EnvEndpointURL] = " http://localhost:4566 "
	require.Equal(t, ClientOptions{
		Region:          "us-east-1",
		EndpointURL:     "http://localhost:4566",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	}, ClientOptionsFromEnv(lookup))

	env[EnvBackend] = " SecretsManager "
	require.Equal(t, BackendSecretsManager, ClientOptionsFromEnv(lookup).Backend)

	require.Equal(t, ClientOptions{}, ClientOptionsFromEnv(nil))
}

func TestNewFromConfig_SelectsBackend(t *testing.T) {
	t.Parallel()

	base := ClientOptions{
		Region:          "us-east-1",
		EndpointURL:     "http://localhost:4566",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	}

	store, err := NewFromConfig(context.Background(), base)
	require.NoError(t, err)
	require.IsType(t, &SSM{}, store)

	base.Backend = BackendSSM
	store, err = NewFromConfig(context.Background(), base)
	require.NoError(t, err)
	require.IsType(t, &SSM{}, store)

	base.Backend = BackendSecretsManager
	store, err = NewFromConfig(context.Background(), base)
	require.NoError(t, err)
	require.IsType(t, &SecretsManager{}, store)

	base.Backend = "vault"
	store, err = NewFromConfig(context.Background(), base)
	require.ErrorContains(t, err, `unsupported backend "vault"`)
	require.Nil(t, store)
}

func TestNewSSMFromConfig_StaticCredentials(t *testing.T) {
	t.Parallel()

	store, err := NewSSMFromConfig(context.Background(), ClientOptions{
		Region:          "us-east-1",
		EndpointURL:     "http://localhost:4566",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	})
	require.NoError(t, err)
	require.NotNil(t, store)
}
