// Package naming builds the deterministic names used when provisioning the key-pair stack.
package naming

import (
	"regexp"
	"strings"
)

// PublicKeyParameterPrefix prefixes the reserved public key parameter name.
const PublicKeyParameterPrefix = "publickey-"

var (
	nonAlnum     = regexp.MustCompile(`[^a-z0-9-]+`)
	multiDash    = regexp.MustCompile(`-+`)
	nonParamChar = regexp.MustCompile(`[^A-Za-z0-9_.\-]+`)
)

func sanitizePart(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	value = strings.ReplaceAll(value, "_", "-")
	value = strings.ReplaceAll(value, " ", "-")
	value = nonAlnum.ReplaceAllString(value, "-")
	value = multiDash.ReplaceAllString(value, "-")
	value = strings.Trim(value, "-")
	return value
}

// NormalizeStage maps stage aliases to canonical values.
func NormalizeStage(stage string) string {
	stage = strings.ToLower(strings.TrimSpace(stage))
	switch stage {
	case "prod", "production", "live":
		return "live"
	case "dev", "development":
		return "dev"
	case "stg", "stage", "staging":
		return "stage"
	case "test", "testing":
		return "test"
	case "local":
		return "local"
	default:
		return sanitizePart(stage)
	}
}

// StackName returns <app>-<stage>, or just <app> when stage is empty.
func StackName(appName, stage string) string {
	return ResourceName(appName, "", stage)
}

// ResourceName returns <app>-<resource>-<stage>, skipping empty parts.
func ResourceName(appName, resource, stage string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{sanitizePart(appName), sanitizePart(resource), NormalizeStage(stage)} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "-")
}

// PublicKeyParameterName returns the name of the reserved public key parameter for a construct
// with the given unique id. Characters SSM rejects in a flat parameter name are dropped.
func PublicKeyParameterName(uniqueID string) string {
	return PublicKeyParameterPrefix + nonParamChar.ReplaceAllString(strings.TrimSpace(uniqueID), "")
}
