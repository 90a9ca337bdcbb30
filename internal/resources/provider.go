// Package resources implements the pluggable resource providers of
// spec.md §4.I: small {canHandle, list, read} capability objects, plus the
// built-in filesystem provider with allowlist enforcement.
package resources

import (
	"fmt"

	"github.com/Argha713/mcp-pipeline-server/internal/protocol"
)

// ErrorKind classifies a provider-level failure so the dispatcher can map
// it to the correct JSON-RPC error code (spec.md §7) without providers
// knowing anything about JSON-RPC.
type ErrorKind int

const (
	// KindNotFound maps to InvalidParams.
	KindNotFound ErrorKind = iota
	// KindUnauthorized maps to InvalidParams (access-denied).
	KindUnauthorized
	// KindArgument maps to InvalidParams (malformed request).
	KindArgument
	// KindInternal maps to InternalError.
	KindInternal
	// KindNoProvider maps to MethodNotFound: no provider claimed the URI's
	// scheme at all (spec.md §7: "unknown URI scheme").
	KindNoProvider
)

// ProviderError is the error type every Provider returns for a
// request-shaped failure (as opposed to a genuine internal exception,
// which providers should also wrap as KindInternal rather than returning
// a bare error the dispatcher can't classify).
type ProviderError struct {
	Kind    ErrorKind
	Message string
}

func (e *ProviderError) Error() string { return e.Message }

func newError(kind ErrorKind, format string, args ...any) *ProviderError {
	return &ProviderError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Provider is the capability set of one resource source (spec.md §4.I /
// §8 "capability polymorphism").
type Provider interface {
	CanHandle(uri string) bool
	List() ([]protocol.ResourceDescriptor, error)
	Read(uri string) (protocol.ResourceContents, error)
}

// Registry aggregates providers and routes resources/list and
// resources/read across them.
type Registry struct {
	providers []Provider
}

// NewRegistry builds a Registry over the given providers, tried in order.
func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

// List concatenates listResources across every provider.
func (r *Registry) List() ([]protocol.ResourceDescriptor, error) {
	var all []protocol.ResourceDescriptor
	for _, p := range r.providers {
		items, err := p.List()
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	return all, nil
}

// Read routes uri to the first provider whose CanHandle returns true. If
// none do, it returns a *ProviderError with KindNoProvider — the
// dispatcher maps an unmatched scheme to MethodNotFound (spec.md §7:
// "unknown URI scheme" is a method-not-found condition).
func (r *Registry) Read(uri string) (protocol.ResourceContents, error) {
	for _, p := range r.providers {
		if p.CanHandle(uri) {
			return p.Read(uri)
		}
	}
	return protocol.ResourceContents{}, newError(KindNoProvider, "no resource provider handles URI %q", uri)
}
