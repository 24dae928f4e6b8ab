package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/hpn/hpn-quill/internal/adapter"
	"github.com/hpn/hpn-quill/internal/config"
	"github.com/hpn/hpn-quill/internal/continuation"
	"github.com/hpn/hpn-quill/internal/domain"
	"github.com/hpn/hpn-quill/internal/editor"
	"github.com/hpn/hpn-quill/internal/handler"
	"github.com/hpn/hpn-quill/internal/security"
	"github.com/hpn/hpn-quill/internal/session"
	"github.com/hpn/hpn-quill/internal/ui"
	"github.com/hpn/hpn-quill/internal/workflow"
	"github.com/hpn/hpn-quill/internal/workspace"
)

// setupLogger creates a structured logger based on config. Every record
// passes through the redacting handler, which also knows the configured keys.
func setupLogger(c *config.Configuration, fallback io.Writer) (*slog.Logger, error) {
	level := slog.LevelInfo
	switch c.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	out := fallback
	if c.Logging.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(c.Logging.OutputPath), 0o700); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(c.Logging.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, err
		}
		out = f
	}

	opts := &slog.HandlerOptions{Level: level}

	var inner slog.Handler
	if c.Logging.Format == "text" {
		inner = slog.NewTextHandler(out, opts)
	} else {
		inner = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(security.NewRedactedHandler(inner,
		c.Providers.OpenAI.APIKey,
		c.Providers.Anthropic.APIKey,
		c.Providers.Gemini.APIKey,
	))

	slog.SetDefault(logger)

	return logger, nil
}

func httpClient(p config.ProviderConfig) *http.Client {
	timeout := p.Timeout()
	if timeout <= 0 {
		timeout = adapter.DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// buildRegistry creates one adapter per provider. Adapters without a key are
// still registered so requests fail with a credential error, not an
// unsupported-provider one.
func buildRegistry(c *config.Configuration) *adapter.Registry {
	oa := c.Provider(domain.ProviderOpenAI)
	an := c.Provider(domain.ProviderAnthropic)
	ge := c.Provider(domain.ProviderGemini)

	return adapter.NewRegistry(
		adapter.NewOpenAIAdapter(oa.APIKey,
			adapter.WithOpenAIBaseURL(oa.BaseURL),
			adapter.WithOpenAIModel(oa.Model),
			adapter.WithOpenAIHTTPClient(httpClient(oa)),
		),
		adapter.NewAnthropicAdapter(an.APIKey,
			adapter.WithAnthropicBaseURL(an.BaseURL),
			adapter.WithAnthropicModel(an.Model),
			adapter.WithAnthropicHTTPClient(httpClient(an)),
		),
		adapter.NewGeminiAdapter(ge.APIKey,
			adapter.WithGeminiBaseURL(ge.BaseURL),
			adapter.WithGeminiModel(ge.Model),
			adapter.WithGeminiHTTPClient(httpClient(ge)),
		),
	)
}

func modelFor(c *config.Configuration, p domain.ProviderID) string {
	if m := c.Provider(p).Model; m != "" {
		return m
	}
	switch p {
	case domain.ProviderAnthropic:
		return adapter.DefaultAnthropicModel
	case domain.ProviderGemini:
		return adapter.DefaultGeminiModel
	default:
		return adapter.DefaultOpenAIModel
	}
}

func providerInfos(c *config.Configuration) []handler.ProviderInfo {
	infos := make([]handler.ProviderInfo, 0, len(domain.Providers()))
	for _, p := range domain.Providers() {
		infos = append(infos, handler.ProviderInfo{
			ID:         p,
			Name:       p.DisplayName(),
			Model:      modelFor(c, p),
			Configured: c.Provider(p).APIKey != "",
			Default:    p == c.DefaultProvider(),
		})
	}
	return infos
}

func providerStatuses(infos []handler.ProviderInfo) []ui.ProviderStatus {
	out := make([]ui.ProviderStatus, len(infos))
	for i, info := range infos {
		out[i] = ui.ProviderStatus{
			Name:       info.ID.String(),
			Model:      info.Model,
			Configured: info.Configured,
			Active:     info.Default,
		}
	}
	return out
}

// openStore returns the configured draft store, or memory when ephemeral.
func openStore(c *config.Configuration, ephemeral bool) (session.BlobStore, string, error) {
	backend := c.Store.Backend
	if ephemeral {
		backend = config.StoreMemory
	}

	switch backend {
	case config.StoreMemory:
		return session.NewMemoryStore(), "memory", nil
	case config.StoreSQLite:
		s, err := session.NewSQLiteStore(c.Store.Path)
		if err != nil {
			return nil, "", err
		}
		return s, "sqlite " + c.Store.Path, nil
	case config.StoreFile:
		s, err := session.NewFileStore(c.Store.Path)
		if err != nil {
			return nil, "", err
		}
		return s, "file " + c.Store.Path, nil
	default:
		return nil, "", fmt.Errorf("unknown store backend %q", backend)
	}
}

// newService builds the continuation service over the configured adapters.
func newService(c *config.Configuration, l *slog.Logger) *continuation.Service {
	return continuation.NewService(buildRegistry(c), continuation.WithLogger(l))
}

// newWorkspace builds a workspace with an in-memory buffer and optional persistence.
func newWorkspace(c *config.Configuration, l *slog.Logger, continuer workspace.Continuer, store session.BlobStore, extra ...workspace.Option) *workspace.Workspace {
	opts := []workspace.Option{
		workspace.WithLogger(l),
		workspace.WithProvider(c.DefaultProvider()),
	}
	if store != nil {
		opts = append(opts, workspace.WithBridge(session.NewBridge(store,
			session.WithBridgeLogger(l),
			session.WithSaveTimeout(c.Store.SaveTimeout()),
		)))
	}
	opts = append(opts, extra...)
	return workspace.New(continuer, editor.NewBuffer(""), opts...)
}

// printTransition echoes session state changes on the console.
func printTransition(from, to workflow.State, trigger string) {
	msg := fmt.Sprintf("session %s -> %s (%s)", from, to, trigger)
	if to == workflow.Failed {
		ui.PrintWarning(msg)
		return
	}
	ui.PrintInfo(msg)
}

// warnIfUnconfigured prints a warning when no provider has a credential and
// reports whether it did.
func warnIfUnconfigured(infos []handler.ProviderInfo) bool {
	for _, info := range infos {
		if info.Configured {
			return false
		}
	}
	ui.PrintWarning("No provider credential found. Set OPENAI_API_KEY, ANTHROPIC_API_KEY or GEMINI_API_KEY.")
	return true
}
