// Package provisioning describes the infrastructure the key-pair handler runs in, independent of
// the tool that creates it.
package provisioning

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/theory-cloud/cfkeypair/pkg/naming"
)

const (
	DefaultAppName          = "cfkeypair"
	DefaultHandlerAsset     = "dist/keypair-handler"
	DefaultTimeoutSeconds   = 30
	DefaultLogRetentionDays = 1
	DefaultOriginDomain     = "example.com"
	DefaultLogLevel         = "info"

	// PublicKeyPlaceholder seeds the reserved public key parameter.
	PublicKeyPlaceholder = "dummy"
)

var ErrInvalidConfig = errors.New("provisioning: invalid config")

// Config is the YAML-loadable provisioning configuration.
type Config struct {
	AppName string `yaml:"app_name"`
	Stage   string `yaml:"stage"`

	// HandlerAssetPath is the directory holding the compiled "bootstrap" binary.
	HandlerAssetPath string `yaml:"handler_asset_path"`
	TimeoutSeconds   int    `yaml:"timeout_seconds"`
	LogRetentionDays int    `yaml:"log_retention_days"`
	LogLevel         string `yaml:"log_level"`

	// PhysicalResourceID is passed to the custom resource as its physicalResourceId property.
	// Empty leaves the handler default in place.
	PhysicalResourceID string `yaml:"physical_resource_id"`

	// ErrorTopicARN enables SNS error notifications from the handler.
	ErrorTopicARN string `yaml:"error_topic_arn"`

	DemoDistribution *bool  `yaml:"demo_distribution"`
	OriginDomain     string `yaml:"origin_domain"`
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads a YAML config file. An empty path returns DefaultConfig.
func LoadConfig(path string) (Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("provisioning: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML, rejecting unknown keys, then applies defaults and validates.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.AppName = strings.TrimSpace(c.AppName)
	if c.AppName == "" {
		c.AppName = DefaultAppName
	}
	c.Stage = naming.NormalizeStage(c.Stage)
	c.HandlerAssetPath = strings.TrimSpace(c.HandlerAssetPath)
	if c.HandlerAssetPath == "" {
		c.HandlerAssetPath = DefaultHandlerAsset
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.LogRetentionDays == 0 {
		c.LogRetentionDays = DefaultLogRetentionDays
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	c.PhysicalResourceID = strings.TrimSpace(c.PhysicalResourceID)
	c.ErrorTopicARN = strings.TrimSpace(c.ErrorTopicARN)
	if c.DemoDistribution == nil {
		enabled := true
		c.DemoDistribution = &enabled
	}
	c.OriginDomain = strings.TrimSpace(c.OriginDomain)
	if c.OriginDomain == "" {
		c.OriginDomain = DefaultOriginDomain
	}
}

func (c Config) Validate() error {
	if c.TimeoutSeconds < 1 || c.TimeoutSeconds > 900 {
		return fmt.Errorf("%w: timeout_seconds must be between 1 and 900", ErrInvalidConfig)
	}
	if _, ok := retentionDays[c.LogRetentionDays]; !ok {
		return fmt.Errorf("%w: log_retention_days %d is not a CloudWatch retention period", ErrInvalidConfig, c.LogRetentionDays)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unsupported log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

// WithStage returns a copy of c for another stage.
func (c Config) WithStage(stage string) Config {
	c.Stage = naming.NormalizeStage(stage)
	return c
}

// DemoDistributionEnabled reports whether the sample CloudFront distribution is provisioned.
func (c Config) DemoDistributionEnabled() bool {
	return c.DemoDistribution == nil || *c.DemoDistribution
}

// StackName is the deterministic CloudFormation stack name.
func (c Config) StackName() string {
	return naming.StackName(c.AppName, c.Stage)
}

// retentionDays lists the retention periods CloudWatch Logs accepts.
var retentionDays = map[int]struct{}{
	1: {}, 3: {}, 5: {}, 7: {}, 14: {}, 30: {}, 60: {}, 90: {}, 120: {}, 150: {}, 180: {},
	365: {}, 400: {}, 545: {}, 731: {}, 1096: {}, 1827: {}, 2192: {}, 2557: {}, 2922: {},
	3288: {}, 3653: {},
}
