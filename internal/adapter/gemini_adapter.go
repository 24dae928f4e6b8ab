package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hpn/hpn-quill/internal/domain"
)

const (
	// DefaultGeminiBaseURL is the default Gemini API endpoint.
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultGeminiModel is the model used when none is configured.
	DefaultGeminiModel = "gemini-2.5-flash"

	// GeminiEnvVar names the credential variable for Gemini.
	GeminiEnvVar = "GEMINI_API_KEY"

	geminiTemperature = 0.7
	// Thinking models spend part of the budget on hidden reasoning,
	// so the cap is higher than the visible 2-3 sentences need.
	geminiMaxOutputTokens = 1024
)

// GeminiAdapter implements Generator for the Google Gemini API.
type GeminiAdapter struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// GeminiAdapterOption is a functional option for configuring GeminiAdapter.
type GeminiAdapterOption func(*GeminiAdapter)

// WithGeminiBaseURL sets a custom base URL for the Gemini API.
func WithGeminiBaseURL(url string) GeminiAdapterOption {
	return func(g *GeminiAdapter) {
		if url != "" {
			g.baseURL = strings.TrimSuffix(url, "/")
		}
	}
}

// WithGeminiModel overrides the Gemini model name.
func WithGeminiModel(model string) GeminiAdapterOption {
	return func(g *GeminiAdapter) {
		if model != "" {
			g.model = model
		}
	}
}

// WithGeminiHTTPClient sets a custom HTTP client.
func WithGeminiHTTPClient(client *http.Client) GeminiAdapterOption {
	return func(g *GeminiAdapter) {
		g.httpClient = client
	}
}

// NewGeminiAdapter creates a new GeminiAdapter with the given API key.
// An empty key is accepted here and reported on the first Generate call.
func NewGeminiAdapter(apiKey string, opts ...GeminiAdapterOption) *GeminiAdapter {
	g := &GeminiAdapter{
		apiKey:  apiKey,
		baseURL: DefaultGeminiBaseURL,
		model:   DefaultGeminiModel,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Provider returns the provider identifier.
func (g *GeminiAdapter) Provider() domain.ProviderID {
	return domain.ProviderGemini
}

// Generate calls generateContent once and extracts the visible text.
func (g *GeminiAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(g.apiKey) == "" {
		return "", missingCredential(domain.ProviderGemini, GeminiEnvVar)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	headers := map[string]string{"x-goog-api-key": g.apiKey}

	status, body, err := postJSON(ctx, g.httpClient, url, headers, g.buildRequest(prompt))
	if err != nil {
		return "", upstream(domain.ProviderGemini, "gemini request failed: "+err.Error(), err)
	}

	if status != http.StatusOK {
		var geminiErr GeminiErrorResponse
		if err := json.Unmarshal(body, &geminiErr); err == nil && geminiErr.Error.Message != "" {
			return "", upstream(domain.ProviderGemini, fmt.Sprintf("gemini API error [%d] %s: %s",
				status, geminiErr.Error.Status, geminiErr.Error.Message), nil)
		}
		return "", upstream(domain.ProviderGemini, fmt.Sprintf("gemini API error [%d]: %s", status, string(body)), nil)
	}

	var resp GeminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", upstream(domain.ProviderGemini, "failed to unmarshal gemini response: "+err.Error(), err)
	}

	return extractGeminiText(resp)
}

// buildRequest wraps the prompt in a single user turn with the fixed generation config.
func (g *GeminiAdapter) buildRequest(prompt string) GeminiRequest {
	temperature := geminiTemperature
	maxTokens := geminiMaxOutputTokens
	return GeminiRequest{
		Contents: []GeminiContent{
			{
				Role:  "user",
				Parts: []GeminiPart{{Text: prompt}},
			},
		},
		GenerationConfig: GeminiGenerationConfig{
			Temperature:     &temperature,
			MaxOutputTokens: &maxTokens,
		},
	}
}

// extractGeminiText concatenates the visible parts of the first candidate.
// Thought parts are hidden reasoning and never count as output.
func extractGeminiText(resp GeminiResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", emptyResponse(domain.ProviderGemini, "prompt blocked: "+resp.PromptFeedback.BlockReason)
		}
		return "", emptyResponse(domain.ProviderGemini, "no candidates")
	}

	candidate := resp.Candidates[0]
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		detail := "finish reason " + candidate.FinishReason
		if u := resp.UsageMetadata; u != nil && u.ThoughtsTokenCount > 0 {
			detail += fmt.Sprintf(", %d tokens spent on reasoning", u.ThoughtsTokenCount)
		}
		return "", emptyResponse(domain.ProviderGemini, detail)
	}
	return text, nil
}

// ============================================================================
// Gemini API Types
// ============================================================================

// GeminiRequest represents a Gemini generateContent request.
type GeminiRequest struct {
	Contents         []GeminiContent        `json:"contents"`
	GenerationConfig GeminiGenerationConfig `json:"generationConfig,omitempty"`
}

// GeminiContent represents a content block in Gemini format.
type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

// GeminiPart represents a part of a content block.
type GeminiPart struct {
	Text    string `json:"text,omitempty"`
	Thought bool   `json:"thought,omitempty"`
}

// GeminiGenerationConfig contains generation parameters.
type GeminiGenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

// GeminiResponse represents a Gemini generateContent response.
type GeminiResponse struct {
	Candidates     []GeminiCandidate     `json:"candidates"`
	PromptFeedback *GeminiPromptFeedback `json:"promptFeedback,omitempty"`
	UsageMetadata  *GeminiUsageMetadata  `json:"usageMetadata,omitempty"`
}

// GeminiCandidate represents a single generated candidate.
type GeminiCandidate struct {
	Content      GeminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
	Index        int           `json:"index"`
}

// GeminiPromptFeedback is present when the prompt itself was blocked.
type GeminiPromptFeedback struct {
	BlockReason string `json:"blockReason"`
}

// GeminiUsageMetadata contains token usage information.
type GeminiUsageMetadata struct {
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	ThoughtsTokenCount   int `json:"thoughtsTokenCount"`
}

// GeminiErrorResponse represents an error response from Gemini API.
type GeminiErrorResponse struct {
	Error GeminiErrorDetail `json:"error"`
}

// GeminiErrorDetail contains error details.
type GeminiErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}
