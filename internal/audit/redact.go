package audit

import (
	"strings"

	"github.com/Argha713/mcp-pipeline-server/internal/dynamic"
)

// sensitiveKeys are argument key substrings that always trigger redaction,
// regardless of configured hints (spec.md §4.F).
var sensitiveKeys = []string{
	"password",
	"pwd",
	"secret",
	"token",
	"authorization",
	"api_key",
	"apikey",
	"credential",
	"private_key",
}

const redactedValue = "[REDACTED]"

// Redact returns a copy of args with sensitive values replaced by
// "[REDACTED]", matching keys case-insensitively against the fixed
// sensitive-key set plus the caller-supplied hints. The original map is
// never mutated.
func Redact(args dynamic.Map, hints []string) dynamic.Map {
	out := make(dynamic.Map, len(args))
	for k, v := range args {
		if shouldRedact(k, hints) {
			out[k] = dynamic.Value{Kind: dynamic.KindString, Str: redactedValue}
			continue
		}
		out[k] = redactValue(v, hints)
	}
	return out
}

func redactValue(v dynamic.Value, hints []string) dynamic.Value {
	if v.Kind != dynamic.KindObject {
		return v
	}
	nested := Redact(dynamic.Map(v.Object), hints)
	return dynamic.Value{Kind: dynamic.KindObject, Object: map[string]dynamic.Value(nested)}
}

func shouldRedact(key string, hints []string) bool {
	lower := strings.ToLower(key)
	for _, pattern := range sensitiveKeys {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	for _, hint := range hints {
		if hint != "" && strings.Contains(lower, strings.ToLower(hint)) {
			return true
		}
	}
	return false
}
