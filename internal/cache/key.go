package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/Argha713/mcp-pipeline-server/internal/dynamic"
)

// Key is the deterministic cache-key string for one tool invocation, per
// spec.md §4.D:
//
//	lowercase(toolName) ":" (action ?? "") ":" hex16(sha256(canonicalJson(arguments \ {"action","_meta"})))
type Key string

// BuildKey derives the cache key for a tool call. args must already be the
// same normalized dynamic.Map handed to the tool and to audit sanitization
// — the spec's "single normalized arguments map" invariant (§9).
func BuildKey(toolName, action string, args dynamic.Map) Key {
	hashed := args.Without("action", "_meta")
	canon := hashed.CanonicalJSON()

	sum := sha256.Sum256(canon)
	hexDigest := hex.EncodeToString(sum[:])[:16]

	return Key(strings.ToLower(toolName) + ":" + action + ":" + hexDigest)
}
