package main

import (
	"fmt"
	"log/slog"

	"github.com/hpn/hpn-quill/internal/config"
	"github.com/hpn/hpn-quill/internal/ui"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Configuration
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "hpn-quill",
	Short: "AI text continuation with OpenAI, Anthropic and Gemini",
	Long: `hpn-quill continues a piece of text in its own tone and style using
one of several AI providers, and keeps a list of saved drafts.

Credentials are read from OPENAI_API_KEY, ANTHROPIC_API_KEY and
GEMINI_API_KEY (a .env file in the working directory is honored).
Everything else can be set in config.yaml or HPN_QUILL_* variables.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadRuntime,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() error {
	ui.Version = version
	rootCmd.Version = version
	return rootCmd.Execute()
}

func loadRuntime(cmd *cobra.Command, _ []string) error {
	loaded, err := config.GetConfigWithPath(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if logLevel != "" {
		loaded.Logging.Level = logLevel
		if err := loaded.Validate(); err != nil {
			return err
		}
	}

	l, err := setupLogger(loaded, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("setting up logger: %w", err)
	}

	cfg, logger = loaded, l
	return nil
}
