package cfkeypair

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(func(key string) (string, bool) {
		switch key {
		case EnvPrivateKeyParameter:
			return " /ec2/keypair/key-1 ", true
		case EnvPublicKeyParameter:
			return "publickey-abc", true
		default:
			return "", false
		}
	})
	require.NoError(t, err)
	require.Equal(t, Config{PrivateKeyParameter: "/ec2/keypair/key-1", PublicKeyParameter: "publickey-abc"}, cfg)
}

func TestLoadConfig_PublicKeyParameterIsOptional(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(func(key string) (string, bool) {
		if key == EnvPrivateKeyParameter {
			return "/ec2/keypair/key-1", true
		}
		return "", false
	})
	require.NoError(t, err)
	require.Empty(t, cfg.PublicKeyParameter)
}

func TestLoadConfig_MissingPrivateKeyParameter(t *testing.T) {
	t.Parallel()

	for name, lookup := range map[string]func(string) (string, bool){
		"unset": func(string) (string, bool) { return "", false },
		"blank": func(string) (string, bool) { return " \t", true },
	} {
		cfg, err := LoadConfig(lookup)
		require.Equal(t, ErrorCodeConfiguration, CodeOf(err), name)
		require.Contains(t, err.Error(), EnvPrivateKeyParameter, name)
		require.Equal(t, Config{}, cfg, name)
	}
}

func TestLoadConfig_NilLookupUsesProcessEnv(t *testing.T) {
	t.Setenv(EnvPrivateKeyParameter, "/from/env")

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	require.Equal(t, "/from/env", cfg.PrivateKeyParameter)
}
