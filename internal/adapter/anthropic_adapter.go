package adapter

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hpn/hpn-quill/internal/domain"
	"github.com/tidwall/gjson"
)

const (
	// DefaultAnthropicBaseURL is the default Anthropic API endpoint.
	DefaultAnthropicBaseURL = "https://api.anthropic.com"

	// DefaultAnthropicModel is the model used when none is configured.
	DefaultAnthropicModel = "claude-3-5-haiku-latest"

	// AnthropicEnvVar names the credential variable for Anthropic.
	AnthropicEnvVar = "ANTHROPIC_API_KEY"

	anthropicVersion     = "2023-06-01"
	anthropicTemperature = 0.7
	anthropicMaxTokens   = 150
)

// AnthropicAdapter implements Generator for the Anthropic Messages API.
type AnthropicAdapter struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// AnthropicAdapterOption is a functional option for configuring AnthropicAdapter.
type AnthropicAdapterOption func(*AnthropicAdapter)

// WithAnthropicBaseURL sets a custom base URL.
func WithAnthropicBaseURL(url string) AnthropicAdapterOption {
	return func(a *AnthropicAdapter) {
		if url != "" {
			a.baseURL = strings.TrimSuffix(url, "/")
		}
	}
}

// WithAnthropicModel overrides the model name.
func WithAnthropicModel(model string) AnthropicAdapterOption {
	return func(a *AnthropicAdapter) {
		if model != "" {
			a.model = model
		}
	}
}

// WithAnthropicHTTPClient sets a custom HTTP client.
func WithAnthropicHTTPClient(client *http.Client) AnthropicAdapterOption {
	return func(a *AnthropicAdapter) {
		a.httpClient = client
	}
}

// NewAnthropicAdapter creates a new AnthropicAdapter with the given API key.
func NewAnthropicAdapter(apiKey string, opts ...AnthropicAdapterOption) *AnthropicAdapter {
	a := &AnthropicAdapter{
		apiKey:  apiKey,
		baseURL: DefaultAnthropicBaseURL,
		model:   DefaultAnthropicModel,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Provider returns the provider identifier.
func (a *AnthropicAdapter) Provider() domain.ProviderID {
	return domain.ProviderAnthropic
}

// anthropicRequest is the subset of the Messages API body we send.
type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generate sends one Messages API request and joins the text blocks of the reply.
func (a *AnthropicAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(a.apiKey) == "" {
		return "", missingCredential(domain.ProviderAnthropic, AnthropicEnvVar)
	}

	req := anthropicRequest{
		Model:       a.model,
		MaxTokens:   anthropicMaxTokens,
		Temperature: anthropicTemperature,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicVersion,
	}

	status, body, err := postJSON(ctx, a.httpClient, a.baseURL+"/v1/messages", headers, req)
	if err != nil {
		return "", upstream(domain.ProviderAnthropic, "anthropic request failed: "+err.Error(), err)
	}

	if status != http.StatusOK {
		if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
			return "", upstream(domain.ProviderAnthropic, fmt.Sprintf("anthropic API error [%d] %s: %s",
				status, gjson.GetBytes(body, "error.type").String(), msg.String()), nil)
		}
		return "", upstream(domain.ProviderAnthropic, fmt.Sprintf("anthropic API error [%d]: %s", status, string(body)), nil)
	}

	return extractAnthropicText(body)
}

// extractAnthropicText joins every "text" content block.
// Thinking and tool blocks are ignored.
func extractAnthropicText(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", upstream(domain.ProviderAnthropic, "anthropic returned invalid JSON", nil)
	}

	var sb strings.Builder
	for _, block := range gjson.GetBytes(body, `content.#(type=="text")#.text`).Array() {
		sb.WriteString(block.String())
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", emptyResponse(domain.ProviderAnthropic, "stop reason "+gjson.GetBytes(body, "stop_reason").String())
	}
	return text, nil
}
