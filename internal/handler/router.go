package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// RouterConfig wires handlers and middleware into a gin engine.
type RouterConfig struct {
	Continuation   *ContinuationHandler
	Session        *SessionHandler
	Logger         *slog.Logger
	AllowedOrigins []string
	// Console enables the colored per-request summary line.
	Console bool
}

// NewRouter builds the engine. Session routes are registered only when a
// SessionHandler is given.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()

	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware(cfg.AllowedOrigins))
	router.Use(LoggingMiddleware(logger))
	if cfg.Console {
		router.Use(ConsoleMiddleware())
	}

	router.GET("/health", cfg.Continuation.HandleHealth)

	api := router.Group("/api")
	api.POST("/continue", cfg.Continuation.HandleContinue)
	api.GET("/providers", cfg.Continuation.HandleProviders)

	if s := cfg.Session; s != nil {
		session := api.Group("/session")
		session.GET("", s.HandleGet)
		session.PUT("/content", s.HandleContent)
		session.POST("/continue", s.HandleContinue)
		session.POST("/dismiss", s.HandleDismiss)
		session.PUT("/provider", s.HandleProvider)
		session.POST("/drafts", s.HandleSaveDraft)
		session.POST("/drafts/:index/load", s.HandleLoadDraft)
		session.DELETE("/drafts/:index", s.HandleDeleteDraft)
		session.POST("/clear", s.HandleClear)
	}

	return router
}
