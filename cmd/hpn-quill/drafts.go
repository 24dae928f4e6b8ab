package main

import (
	"fmt"
	"strconv"

	"github.com/hpn/hpn-quill/internal/ui"
	"github.com/hpn/hpn-quill/internal/workspace"
	"github.com/spf13/cobra"
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Manage saved drafts",
	Long:  `Lists, shows, adds and deletes the drafts kept in the configured store.`,
}

var draftsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved drafts",
	Args:  cobra.NoArgs,
	RunE: withDrafts(func(cmd *cobra.Command, ws *workspace.Workspace, _ []string) error {
		ui.PrintDrafts(ws.Snapshot().SavedDrafts)
		return nil
	}),
}

var draftsShowCmd = &cobra.Command{
	Use:   "show <index>",
	Short: "Print one draft in full",
	Args:  cobra.ExactArgs(1),
	RunE: withDrafts(func(cmd *cobra.Command, ws *workspace.Workspace, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		if err := ws.LoadDraft(index); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ws.Snapshot().EditorContent)
		return nil
	}),
}

var draftsAddCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Save text as a new draft (stdin when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: withDrafts(func(cmd *cobra.Command, ws *workspace.Workspace, args []string) error {
		text, err := readInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		ws.Edit(text)
		if err := ws.SaveDraft(); err != nil {
			return err
		}
		ui.PrintDrafts(ws.Snapshot().SavedDrafts)
		return nil
	}),
}

var draftsDeleteCmd = &cobra.Command{
	Use:   "delete <index>",
	Short: "Delete a draft; later drafts shift down by one",
	Args:  cobra.ExactArgs(1),
	RunE: withDrafts(func(cmd *cobra.Command, ws *workspace.Workspace, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		if err := ws.DeleteDraft(index); err != nil {
			return err
		}
		ui.PrintDrafts(ws.Snapshot().SavedDrafts)
		return nil
	}),
}

func init() {
	draftsCmd.AddCommand(draftsListCmd, draftsShowCmd, draftsAddCmd, draftsDeleteCmd)
	rootCmd.AddCommand(draftsCmd)
}

// withDrafts opens the store, hydrates a workspace and runs fn against it.
func withDrafts(fn func(*cobra.Command, *workspace.Workspace, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore(cfg, false)
		if err != nil {
			return fmt.Errorf("opening draft store: %w", err)
		}
		defer store.Close()

		ws := newWorkspace(cfg, logger, nil, store)
		ws.Start(cmd.Context())

		ui.Output = cmd.OutOrStdout()
		return fn(cmd, ws, args)
	}
}

func parseIndex(s string) (int, error) {
	index, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("draft index must be an integer: %q", s)
	}
	return index, nil
}
