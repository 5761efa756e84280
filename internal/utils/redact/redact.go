package redact

import "strings"

// Placeholder replaces the value of any sensitive key before storage.
const Placeholder = "[REDACTED]"

// sensitiveFragments are matched as substrings of lowercased key names.
var sensitiveFragments = []string{"password", "token", "secret", "key", "credential"}

// IsSensitiveKey reports whether a key name must not reach the audit trail.
func IsSensitiveKey(key string) bool {
	lowered := strings.ToLower(key)
	for _, fragment := range sensitiveFragments {
		if strings.Contains(lowered, fragment) {
			return true
		}
	}
	return false
}

// Map returns a copy of data with sensitive values replaced recursively.
// The input map is never mutated. Nil input yields nil.
func Map(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		if IsSensitiveKey(k) {
			out[k] = Placeholder
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = Map(nested)
			continue
		}
		out[k] = v
	}
	return out
}
