package cfkeypair

import (
	"os"
	"strings"
)

const (
	EnvPrivateKeyParameter = "PRIVATEKEY_PARAMETER"
	EnvPublicKeyParameter  = "PUBLICKEY_PARAMETER"
)

// Config is the handler's environment-supplied configuration.
type Config struct {
	PrivateKeyParameter string

	// PublicKeyParameter names the parameter seeded for the derived public key. It is carried for
	// future use and not read by the reconciliation logic.
	PublicKeyParameter string
}

// LoadConfig reads Config through lookup. A missing private key parameter is a configuration error.
func LoadConfig(lookup func(string) (string, bool)) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	cfg := Config{
		PrivateKeyParameter: lookupTrimmed(lookup, EnvPrivateKeyParameter),
		PublicKeyParameter:  lookupTrimmed(lookup, EnvPublicKeyParameter),
	}
	if cfg.PrivateKeyParameter == "" {
		return Config{}, NewError(ErrorCodeConfiguration, errorMessageMissingPrivateKeyParameter+" ("+EnvPrivateKeyParameter+")")
	}
	return cfg, nil
}

func lookupTrimmed(lookup func(string) (string, bool), key string) string {
	value, ok := lookup(key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
