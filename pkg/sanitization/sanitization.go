package sanitization

import (
	"fmt"
	"regexp"
	"strings"
)

const redactedValue = "[REDACTED]"

const (
	emptyMaskedValue = "(empty)"
	maskedValue      = "***masked***"
)

// AllowedFields are field names that should bypass key-based redaction.
var AllowedFields = map[string]bool{
	"public_key_returned": true,
	"publickey_parameter": true,
	"public_key_encoded":  true,
}

// SanitizationType defines how to sanitize a field.
type SanitizationType int

const (
	FullyRedact SanitizationType = iota
	PartialMask
)

// SensitiveFields defines fields that require explicit sanitization behavior.
//
// This list is keyed by lowercased field name.
var SensitiveFields = map[string]SanitizationType{
	"private_key":     FullyRedact,
	"privatekey":      FullyRedact,
	"private_key_pem": FullyRedact,
	"pem":             FullyRedact,
	"key_material":    FullyRedact,

	"password":          FullyRedact,
	"secret":            FullyRedact,
	"secret_key":        FullyRedact,
	"secret_access_key": FullyRedact,
	"session_token":     FullyRedact,
	"authorization":     FullyRedact,

	"access_key_id": PartialMask,
	"kms_key_id":    PartialMask,
}

var privateKeyBlock = regexp.MustCompile(`-----BEGIN [A-Z0-9 ]*PRIVATE KEY-----(?s:.*?)(-----END [A-Z0-9 ]*PRIVATE KEY-----|$)`)

// SanitizeLogString removes PEM private key blocks and control characters that could enable
// log forging.
func SanitizeLogString(value string) string {
	if value == "" {
		return value
	}
	value = RedactPrivateKeys(value)
	value = strings.ReplaceAll(value, "\r", "")
	value = strings.ReplaceAll(value, "\n", "")
	return value
}

// RedactPrivateKeys replaces every PEM private key block in value, including a trailing
// unterminated one, with a fixed marker.
func RedactPrivateKeys(value string) string {
	if !strings.Contains(value, "PRIVATE KEY-----") {
		return value
	}
	return privateKeyBlock.ReplaceAllString(value, redactedValue)
}

// SanitizeFieldValue sanitizes a field value based on its key name.
func SanitizeFieldValue(key string, value any) any {
	keyLower := strings.ToLower(strings.TrimSpace(key))
	if keyLower == "" {
		return sanitizeValue(value)
	}
	if AllowedFields[keyLower] {
		return sanitizeValue(value)
	}

	if typ, ok := SensitiveFields[keyLower]; ok {
		switch typ {
		case FullyRedact:
			return redactedValue
		case PartialMask:
			return maskRestrictedValue(value)
		default:
			return redactedValue
		}
	}

	// Substring-based fallback: treat obvious secrets/tokens as fully redacted.
	blockedSubstrings := []string{
		"secret",
		"token",
		"password",
		"private",
		"credential",
		"authorization",
	}
	for _, substr := range blockedSubstrings {
		if strings.Contains(keyLower, substr) {
			return redactedValue
		}
	}

	return sanitizeValue(value)
}

// MaskFirstLast keeps the first prefixLen and last suffixLen characters and masks the middle.
func MaskFirstLast(value string, prefixLen, suffixLen int) string {
	if value == "" {
		return emptyMaskedValue
	}
	if prefixLen < 0 || suffixLen < 0 {
		return maskedValue
	}
	if len(value) <= prefixLen+suffixLen {
		return maskedValue
	}
	return value[:prefixLen] + "***" + value[len(value)-suffixLen:]
}

// MaskFirstLast4 keeps the first and last 4 characters and masks the middle.
func MaskFirstLast4(value string) string {
	return MaskFirstLast(value, 4, 4)
}

func sanitizeValue(value any) any {
	switch typed := value.(type) {
	case nil:
		return nil
	case string:
		return SanitizeLogString(typed)
	case []byte:
		return SanitizeLogString(string(typed))
	case bool, int, int32, int64, float64:
		return typed
	case error:
		return SanitizeLogString(typed.Error())
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = SanitizeFieldValue(k, v)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = SanitizeFieldValue(k, v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = sanitizeValue(typed[i])
		}
		return out
	default:
		return SanitizeLogString(fmt.Sprintf("%v", typed))
	}
}

func maskRestrictedValue(value any) string {
	switch v := value.(type) {
	case string:
		return maskRestrictedString(v)
	case []byte:
		return maskRestrictedString(string(v))
	default:
		return redactedValue
	}
}

func maskRestrictedString(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return redactedValue
	}
	return MaskFirstLast4(value)
}
