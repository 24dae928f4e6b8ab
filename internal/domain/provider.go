// Package domain contains the core business entities and value objects.
// These types are framework-agnostic and shared by every layer of the writer.
package domain

import (
	"fmt"
	"strings"
)

// ProviderID identifies one of the supported AI vendors.
type ProviderID string

const (
	ProviderOpenAI    ProviderID = "openai"
	ProviderAnthropic ProviderID = "anthropic"
	ProviderGemini    ProviderID = "gemini"

	// DefaultProvider is used when a request does not name a provider.
	DefaultProvider = ProviderOpenAI
)

// Providers returns the closed provider enumeration in display order.
func Providers() []ProviderID {
	return []ProviderID{ProviderOpenAI, ProviderAnthropic, ProviderGemini}
}

// Valid reports whether p is a member of the provider enumeration.
func (p ProviderID) Valid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
		return true
	default:
		return false
	}
}

// DisplayName returns the vendor name used in user-facing messages.
func (p ProviderID) DisplayName() string {
	switch p {
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderAnthropic:
		return "Anthropic"
	case ProviderGemini:
		return "Gemini"
	default:
		return string(p)
	}
}

// String implements fmt.Stringer.
func (p ProviderID) String() string {
	return string(p)
}

// ParseProviderID converts user input into a ProviderID.
// An empty string yields DefaultProvider.
func ParseProviderID(s string) (ProviderID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultProvider, nil
	}
	p := ProviderID(s)
	if !p.Valid() {
		return "", NewProviderError(p, KindUnsupportedProvider,
			fmt.Sprintf("unsupported provider %q", s), nil)
	}
	return p, nil
}
