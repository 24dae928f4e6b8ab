// Package adapter provides implementations for external AI provider integrations.
// It uses the Adapter pattern to hide vendor-specific request and response
// shapes behind a single text-generation contract.
package adapter

import (
	"context"
	"time"

	"github.com/hpn/hpn-quill/internal/domain"
)

const (
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second
)

// Generator defines the interface for AI provider adapters.
// All provider implementations must satisfy this interface.
type Generator interface {
	// Generate turns a prompt into continuation text.
	// Implementations issue exactly one network call and never retry.
	// Failures are returned as *domain.ProviderError.
	Generate(ctx context.Context, prompt string) (string, error)

	// Provider returns the vendor this adapter talks to.
	Provider() domain.ProviderID
}

// Registry maps provider ids to their adapters.
type Registry struct {
	generators map[domain.ProviderID]Generator
}

// NewRegistry creates a registry from the given adapters.
// A later adapter for the same provider replaces an earlier one.
func NewRegistry(generators ...Generator) *Registry {
	r := &Registry{generators: make(map[domain.ProviderID]Generator, len(generators))}
	for _, g := range generators {
		r.generators[g.Provider()] = g
	}
	return r
}

// Lookup returns the adapter registered for provider.
func (r *Registry) Lookup(provider domain.ProviderID) (Generator, bool) {
	g, ok := r.generators[provider]
	return g, ok
}

// missingCredential is returned before any network I/O when a key is absent.
func missingCredential(provider domain.ProviderID, envVar string) error {
	return domain.NewProviderError(provider, domain.KindMissingCredential,
		provider.DisplayName()+" API key is not configured (set "+envVar+")", nil)
}

// emptyResponse marks a structurally valid reply with no visible text.
func emptyResponse(provider domain.ProviderID, detail string) error {
	msg := provider.DisplayName() + " returned no content"
	if detail != "" {
		msg += " (" + detail + ")"
	}
	return domain.NewProviderError(provider, domain.KindEmptyResponse, msg, nil)
}

// upstream wraps a transport or vendor failure for the service layer to classify.
func upstream(provider domain.ProviderID, message string, err error) error {
	return domain.NewProviderError(provider, domain.KindGenerationFailed, message, err)
}
