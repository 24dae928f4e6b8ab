package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hpn/hpn-quill/internal/domain"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultOpenAIModel is the model used when none is configured.
	DefaultOpenAIModel = "gpt-4o-mini"

	// OpenAIEnvVar names the credential variable for OpenAI.
	OpenAIEnvVar = "OPENAI_API_KEY"

	openAITemperature = 0.7
	openAIMaxTokens   = 150
)

// OpenAIAdapter implements Generator on top of the official OpenAI SDK.
type OpenAIAdapter struct {
	apiKey string
	model  string
	client *openai.Client
}

type openAISettings struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// OpenAIAdapterOption is a functional option for configuring OpenAIAdapter.
type OpenAIAdapterOption func(*openAISettings)

// WithOpenAIBaseURL points the SDK at a different endpoint.
func WithOpenAIBaseURL(url string) OpenAIAdapterOption {
	return func(s *openAISettings) {
		s.baseURL = url
	}
}

// WithOpenAIModel overrides the chat model.
func WithOpenAIModel(model string) OpenAIAdapterOption {
	return func(s *openAISettings) {
		if model != "" {
			s.model = model
		}
	}
}

// WithOpenAIHTTPClient sets a custom HTTP client.
func WithOpenAIHTTPClient(client *http.Client) OpenAIAdapterOption {
	return func(s *openAISettings) {
		s.httpClient = client
	}
}

// NewOpenAIAdapter creates a new OpenAIAdapter with the given API key.
func NewOpenAIAdapter(apiKey string, opts ...OpenAIAdapterOption) *OpenAIAdapter {
	s := &openAISettings{
		model:      DefaultOpenAIModel,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}

	// The SDK retries by default; a failed call must surface as-is.
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(s.httpClient),
		option.WithMaxRetries(0),
	}
	if s.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(strings.TrimSuffix(s.baseURL, "/")+"/"))
	}

	return &OpenAIAdapter{
		apiKey: apiKey,
		model:  s.model,
		client: openai.NewClient(reqOpts...),
	}
}

// Provider returns the provider identifier.
func (o *OpenAIAdapter) Provider() domain.ProviderID {
	return domain.ProviderOpenAI
}

// Generate performs one chat completion and returns the first choice's text.
func (o *OpenAIAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(o.apiKey) == "" {
		return "", missingCredential(domain.ProviderOpenAI, OpenAIEnvVar)
	}

	chat, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
		Model:       openai.F(openai.ChatModel(o.model)),
		N:           openai.Int(1),
		Temperature: openai.Float(openAITemperature),
		MaxTokens:   openai.Int(openAIMaxTokens),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", upstream(domain.ProviderOpenAI,
				fmt.Sprintf("openai API error [%d]: %s", apiErr.StatusCode, apiErr.Message), err)
		}
		return "", upstream(domain.ProviderOpenAI, "openai request failed: "+err.Error(), err)
	}

	if len(chat.Choices) == 0 {
		return "", emptyResponse(domain.ProviderOpenAI, "no choices")
	}

	choice := chat.Choices[0]
	if strings.TrimSpace(choice.Message.Content) == "" {
		detail := "finish reason " + string(choice.FinishReason)
		if choice.Message.Refusal != "" {
			detail = "refusal: " + choice.Message.Refusal
		}
		return "", emptyResponse(domain.ProviderOpenAI, detail)
	}

	return choice.Message.Content, nil
}
