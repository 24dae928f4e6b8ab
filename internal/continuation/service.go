// Package continuation builds continuation prompts, dispatches them to the
// selected provider adapter and normalizes the result.
package continuation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hpn/hpn-quill/internal/adapter"
	"github.com/hpn/hpn-quill/internal/domain"
)

// promptTemplate frames the request so adapters get a short continuation back.
const promptTemplate = `Continue the following text naturally. Write only 2-3 sentences that continue from where the text ends, matching the tone and style. Do not repeat any of the original text.

Text: %s

Continuation:`

// leadingPunctuation lists the characters that may start a continuation
// without a separating space.
const leadingPunctuation = ".,;:!?"

// Service is the continuation entry point used by the workspace and HTTP layer.
type Service struct {
	registry *adapter.Registry
	logger   *slog.Logger
}

// ServiceOption is a functional option for configuring Service.
type ServiceOption func(*Service)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a Service dispatching through registry.
func NewService(registry *adapter.Registry, opts ...ServiceOption) *Service {
	s := &Service{
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildPrompt embeds text verbatim in the instructional template.
func BuildPrompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}

// ContinueWriting returns a continuation for text from provider, ready to be
// appended directly after text. Failures are *domain.ProviderError.
func (s *Service) ContinueWriting(ctx context.Context, text string, provider domain.ProviderID) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", domain.NewProviderError(provider, domain.KindEmptyInput, "Text is required to continue writing", nil)
	}

	gen, ok := s.registry.Lookup(provider)
	if !ok {
		return "", domain.NewProviderError(provider, domain.KindUnsupportedProvider,
			fmt.Sprintf("unsupported provider %q", provider), nil)
	}

	start := time.Now()
	raw, err := gen.Generate(ctx, BuildPrompt(text))
	if err != nil {
		classified := Classify(provider, err)
		s.logger.Warn("continuation failed",
			slog.String("provider", provider.String()),
			slog.String("kind", domain.KindOf(classified).Label()),
			slog.Duration("latency", time.Since(start)),
			slog.String("error", err.Error()),
		)
		return "", classified
	}

	continuation, ok := Normalize(raw)
	if !ok {
		return "", domain.NewProviderError(provider, domain.KindEmptyResponse,
			provider.DisplayName()+" returned no content", nil)
	}

	s.logger.Info("continuation generated",
		slog.String("provider", provider.String()),
		slog.Int("input_chars", len(text)),
		slog.Int("output_chars", len(continuation)),
		slog.Duration("latency", time.Since(start)),
	)

	return continuation, nil
}

// Normalize trims raw and prefixes one space unless it starts with
// punctuation from leadingPunctuation. It reports false when nothing is left.
func Normalize(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	if strings.ContainsRune(leadingPunctuation, rune(trimmed[0])) {
		return trimmed, true
	}
	return " " + trimmed, true
}
