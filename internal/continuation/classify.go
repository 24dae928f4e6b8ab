package continuation

import (
	"errors"
	"strings"

	"github.com/hpn/hpn-quill/internal/domain"
)

// Substring tables for best-effort classification of vendor messages.
// Vendors reword these freely; anything unmatched becomes GenerationFailed.
var (
	credentialMarkers = []string{
		"api key", "api_key", "apikey", "x-api-key", "unauthorized",
		"unauthenticated", "authentication", "invalid_api_key", "permission", "[401]", "[403]",
	}
	quotaMarkers = []string{
		"quota", "insufficient_quota", "billing", "resource_exhausted", "credit balance",
	}
	rateLimitMarkers = []string{
		"rate limit", "rate_limit", "ratelimit", "too many requests", "[429]",
	}
)

// Classify re-expresses an adapter failure as the uniform taxonomy with a
// provider-qualified message.
func Classify(provider domain.ProviderID, err error) error {
	name := provider.DisplayName()

	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		switch pe.Kind {
		case domain.KindMissingCredential, domain.KindEmptyInput, domain.KindUnsupportedProvider:
			return pe
		case domain.KindEmptyResponse:
			return domain.NewProviderError(provider, domain.KindEmptyResponse,
				name+" returned no content. The model may have used its output budget on hidden reasoning; please try again.", err)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, quotaMarkers):
		return domain.NewProviderError(provider, domain.KindQuotaExceeded,
			name+" API quota exceeded. Please check your plan and billing details.", err)
	case containsAny(msg, rateLimitMarkers):
		return domain.NewProviderError(provider, domain.KindRateLimited,
			name+" rate limit reached. Please wait a moment and try again.", err)
	case containsAny(msg, credentialMarkers):
		return domain.NewProviderError(provider, domain.KindMissingCredential,
			"Invalid or missing "+name+" API key. Please check your configuration.", err)
	}

	return domain.NewProviderError(provider, domain.KindGenerationFailed,
		"Failed to generate continuation with "+name+": "+err.Error(), err)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
