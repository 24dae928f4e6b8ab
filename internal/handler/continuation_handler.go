package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hpn/hpn-quill/internal/domain"
)

// ctxKeyProvider is the gin context key the logging middleware reads.
const ctxKeyProvider = "provider"

// Continuer produces continuations. *continuation.Service satisfies it.
type Continuer interface {
	ContinueWriting(ctx context.Context, text string, provider domain.ProviderID) (string, error)
}

// ProviderInfo describes one provider for GET /api/providers.
type ProviderInfo struct {
	ID         domain.ProviderID `json:"id"`
	Name       string            `json:"name"`
	Model      string            `json:"model"`
	Configured bool              `json:"configured"`
	Default    bool              `json:"default"`
}

// ContinueRequest is the body of POST /api/continue.
type ContinueRequest struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
}

// ContinueResponse is the success body of POST /api/continue.
type ContinueResponse struct {
	Continuation string `json:"continuation"`
}

// ContinuationHandler serves stateless continuation requests.
type ContinuationHandler struct {
	continuer Continuer
	providers []ProviderInfo
	logger    *slog.Logger
}

// ContinuationHandlerOption is a functional option for configuring ContinuationHandler.
type ContinuationHandlerOption func(*ContinuationHandler)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ContinuationHandlerOption {
	return func(h *ContinuationHandler) {
		h.logger = logger
	}
}

// WithProviders sets the provider list reported by GET /api/providers.
func WithProviders(providers []ProviderInfo) ContinuationHandlerOption {
	return func(h *ContinuationHandler) {
		h.providers = providers
	}
}

// NewContinuationHandler creates a new ContinuationHandler.
func NewContinuationHandler(continuer Continuer, opts ...ContinuationHandlerOption) *ContinuationHandler {
	h := &ContinuationHandler{
		continuer: continuer,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.providers == nil {
		for _, p := range domain.Providers() {
			h.providers = append(h.providers, ProviderInfo{
				ID:      p,
				Name:    p.DisplayName(),
				Default: p == domain.DefaultProvider,
			})
		}
	}

	return h
}

// HandleContinue handles POST /api/continue.
func (h *ContinuationHandler) HandleContinue(c *gin.Context) {
	var req ContinueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortInvalid(c, "Invalid request body: "+err.Error())
		return
	}

	provider, err := domain.ParseProviderID(req.Provider)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Set(ctxKeyProvider, provider.String())

	text, err := h.continuer.ContinueWriting(context.WithoutCancel(c.Request.Context()), req.Text, provider)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ContinueResponse{Continuation: text})
}

// HandleProviders handles GET /api/providers.
func (h *ContinuationHandler) HandleProviders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"providers": h.providers})
}

// HandleHealth handles GET /health.
// The service is healthy as long as it can answer; "degraded" means no
// provider has a credential configured.
func (h *ContinuationHandler) HandleHealth(c *gin.Context) {
	configured := 0
	for _, p := range h.providers {
		if p.Configured {
			configured++
		}
	}

	status := "healthy"
	if configured == 0 {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":               status,
		"configured_providers": configured,
		"total_providers":      len(h.providers),
	})
}
