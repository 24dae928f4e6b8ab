package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hpn/hpn-quill/internal/handler"
	"github.com/hpn/hpn-quill/internal/ui"
	"github.com/hpn/hpn-quill/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	serveHost      string
	servePort      int
	serveEphemeral bool
	serveQuiet     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Starts the HTTP API: a stateless POST /api/continue endpoint plus a
single server-side editing session under /api/session whose saved drafts
persist in the configured store.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "bind address (overrides server.host)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port (overrides server.port)")
	serveCmd.Flags().BoolVar(&serveEphemeral, "ephemeral", false, "keep drafts in memory only")
	serveCmd.Flags().BoolVar(&serveQuiet, "quiet", false, "skip the banner and per-request console lines")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	if !serveQuiet {
		ui.Output = cmd.OutOrStdout()
		ui.PrintBanner()
	}

	// =========================================================================
	// 1. Draft store and workspace
	// =========================================================================
	store, storeDesc, err := openStore(cfg, serveEphemeral)
	if err != nil {
		return fmt.Errorf("opening draft store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close draft store", slog.String("error", err.Error()))
		}
	}()

	svc := newService(cfg, logger)
	var wsOpts []workspace.Option
	if !serveQuiet {
		wsOpts = append(wsOpts, workspace.WithTransitionHook(printTransition))
	}
	ws := newWorkspace(cfg, logger, svc, store, wsOpts...)
	ws.Start(cmd.Context())

	// =========================================================================
	// 2. Router
	// =========================================================================
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	infos := providerInfos(cfg)
	router := handler.NewRouter(handler.RouterConfig{
		Continuation:   handler.NewContinuationHandler(svc, handler.WithLogger(logger), handler.WithProviders(infos)),
		Session:        handler.NewSessionHandler(ws, logger),
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Console:        !serveQuiet,
	})

	// =========================================================================
	// 3. Start HTTP server with graceful shutdown
	// =========================================================================
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("address", addr),
			slog.String("store", storeDesc),
			slog.String("default_provider", cfg.DefaultProvider().String()),
		)
		if !serveQuiet {
			ui.PrintStartupInfo(cfg.Server.Host, cfg.Server.Port, storeDesc, providerStatuses(infos))
			warnIfUnconfigured(infos)
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return err
		}
		return nil
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	if !serveQuiet {
		ui.PrintShutdown()
	}

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("server stopped gracefully")
	if !serveQuiet {
		ui.PrintGoodbye()
	}
	return nil
}
