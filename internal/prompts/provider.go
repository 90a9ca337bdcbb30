// Package prompts implements the pluggable prompt providers of spec.md
// §4.I: small {canHandle, list, get} capability objects, plus a built-in
// fixed-template provider.
package prompts

import (
	"fmt"

	"github.com/Argha713/mcp-pipeline-server/internal/protocol"
)

// ErrorKind classifies a provider-level failure for dispatcher mapping,
// mirroring internal/resources' ProviderError design.
type ErrorKind int

const (
	// KindArgument maps to InvalidParams (missing required argument).
	KindArgument ErrorKind = iota
	// KindUnknownName maps to MethodNotFound.
	KindUnknownName
	// KindInternal maps to InternalError.
	KindInternal
)

// ProviderError is the error type every Provider returns for a
// request-shaped failure.
type ProviderError struct {
	Kind    ErrorKind
	Message string
}

func (e *ProviderError) Error() string { return e.Message }

func newError(kind ErrorKind, format string, args ...any) *ProviderError {
	return &ProviderError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Provider is the capability set of one prompt source (spec.md §4.I /
// §8 "capability polymorphism").
type Provider interface {
	CanHandle(name string) bool
	List() ([]protocol.PromptDescriptor, error)
	Get(name string, arguments map[string]string) (protocol.GetPromptResult, error)
}

// Registry aggregates providers and routes prompts/list and prompts/get
// across them.
type Registry struct {
	providers []Provider
}

// NewRegistry builds a Registry over the given providers, tried in order.
func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

// List concatenates listPrompts across every provider.
func (r *Registry) List() ([]protocol.PromptDescriptor, error) {
	var all []protocol.PromptDescriptor
	for _, p := range r.providers {
		items, err := p.List()
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	return all, nil
}

// Get routes name to the first provider whose CanHandle returns true. If
// none do, it returns a *ProviderError with KindUnknownName — the
// dispatcher maps this to MethodNotFound (spec.md §4.I).
func (r *Registry) Get(name string, arguments map[string]string) (protocol.GetPromptResult, error) {
	for _, p := range r.providers {
		if p.CanHandle(name) {
			return p.Get(name, arguments)
		}
	}
	return protocol.GetPromptResult{}, newError(KindUnknownName, "unknown prompt: %s", name)
}
