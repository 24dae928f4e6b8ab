package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/hpn/hpn-quill/internal/domain"
	"github.com/hpn/hpn-quill/internal/ui"
	"github.com/spf13/cobra"
)

var continueProvider string

var continueCmd = &cobra.Command{
	Use:   "continue [text]",
	Short: "Continue a piece of text once and print the result",
	Long: `Sends the text to the selected provider and prints it followed by the
continuation. With no argument, or "-", the text is read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runContinue,
}

func init() {
	continueCmd.Flags().StringVarP(&continueProvider, "provider", "p", "", "openai, anthropic or gemini (default from config)")
	rootCmd.AddCommand(continueCmd)
}

func runContinue(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	provider := cfg.DefaultProvider()
	if continueProvider != "" {
		provider, err = domain.ParseProviderID(continueProvider)
		if err != nil {
			return err
		}
	}

	ws := newWorkspace(cfg, logger, newService(cfg, logger), nil)
	if err := ws.SwitchProvider(provider); err != nil {
		return err
	}
	ws.Edit(text)

	ui.Output = cmd.OutOrStdout()
	continuation, err := ws.RequestContinuation(cmd.Context())
	if err != nil {
		ui.PrintFailure(domain.KindOf(err).Label(), err.Error())
		return err
	}

	ui.PrintContinuation(provider.DisplayName(), text, continuation)
	return nil
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	raw, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimRight(string(raw), "\n"), nil
}
