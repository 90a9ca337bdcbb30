package dispatcher

import (
	"github.com/Argha713/mcp-pipeline-server/internal/prompts"
	"github.com/Argha713/mcp-pipeline-server/internal/protocol"
	"github.com/Argha713/mcp-pipeline-server/internal/resources"
)

// mapResourceErrorCode translates a resources.ProviderError into the
// JSON-RPC error code spec.md §7 assigns it: not-found and access-denied
// become InvalidParams, an unmatched URI scheme becomes MethodNotFound,
// and anything else is InternalError.
func mapResourceErrorCode(err error) int {
	perr, ok := err.(*resources.ProviderError)
	if !ok {
		return protocol.CodeInternalError
	}
	switch perr.Kind {
	case resources.KindNotFound, resources.KindUnauthorized, resources.KindArgument:
		return protocol.CodeInvalidParams
	case resources.KindNoProvider:
		return protocol.CodeMethodNotFound
	default:
		return protocol.CodeInternalError
	}
}

// mapPromptErrorCode translates a prompts.ProviderError per spec.md §4.I:
// a missing required argument is InvalidParams, an unknown prompt name is
// MethodNotFound.
func mapPromptErrorCode(err error) int {
	perr, ok := err.(*prompts.ProviderError)
	if !ok {
		return protocol.CodeInternalError
	}
	switch perr.Kind {
	case prompts.KindArgument:
		return protocol.CodeInvalidParams
	case prompts.KindUnknownName:
		return protocol.CodeMethodNotFound
	default:
		return protocol.CodeInternalError
	}
}
