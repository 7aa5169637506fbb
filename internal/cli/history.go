package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/tally/internal/history"
)

func (a *app) historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, save, restore and rename past sessions",
		Args:  cobra.NoArgs,
		RunE:  a.run(a.runHistoryList),
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved sessions, oldest first",
			Args:  cobra.NoArgs,
			RunE:  a.run(a.runHistoryList),
		},
		&cobra.Command{
			Use:   "save",
			Short: "Save the current session to history",
			Long: `Save the current session to history. A session restored from or already
saved to history updates that entry; otherwise a new entry is created,
named by --label.`,
			Args: cobra.NoArgs,
			RunE: a.run(a.runHistorySave),
		},
		&cobra.Command{
			Use:   "restore ID|POSITION",
			Short: "Replace the current session with a saved one",
			Long: `Replace the current session with a saved one. The current session is
saved to history first.`,
			Args: cobra.ExactArgs(1),
			RunE: a.run(a.runHistoryRestore),
		},
		&cobra.Command{
			Use:   "rename ID|POSITION LABEL",
			Short: "Rename a saved session",
			Args:  cobra.ExactArgs(2),
			RunE:  a.run(a.runHistoryRename),
		},
	)
	return cmd
}

func (a *app) runHistoryList(cmd *cobra.Command, args []string) error {
	snaps, err := a.svc.History(cmd.Context())
	if err != nil {
		return err
	}
	renderHistory(cmd.OutOrStdout(), snaps, a.svc.State().Arabic, time.Now())
	return nil
}

func (a *app) runHistorySave(cmd *cobra.Command, args []string) error {
	snap, err := a.svc.SaveToHistory(cmd.Context())
	if err != nil {
		return err
	}
	l := a.localizer()
	fmt.Fprintln(cmd.OutOrStdout(), l.line(l.T(msgSaved, snap.ID)))
	return nil
}

func (a *app) runHistoryRestore(cmd *cobra.Command, args []string) error {
	id, err := a.resolveSnapshot(cmd, args[0])
	if err != nil {
		return err
	}
	if err := a.svc.Restore(cmd.Context(), id); err != nil {
		return err
	}
	l := a.localizer()
	fmt.Fprintln(cmd.OutOrStdout(), l.line(l.T(msgRestored, id)))
	a.show(cmd)
	return nil
}

func (a *app) runHistoryRename(cmd *cobra.Command, args []string) error {
	id, err := a.resolveSnapshot(cmd, args[0])
	if err != nil {
		return err
	}
	if err := a.svc.RenameSnapshot(cmd.Context(), id, args[1]); err != nil {
		return err
	}
	l := a.localizer()
	fmt.Fprintln(cmd.OutOrStdout(), l.line(l.T(msgRenamed, id)))
	return nil
}

// resolveSnapshot accepts a snapshot id or its 1-based position in the list.
func (a *app) resolveSnapshot(cmd *cobra.Command, arg string) (string, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return arg, nil
	}
	snaps, err := a.svc.History(cmd.Context())
	if err != nil {
		return "", err
	}
	if n < 1 || n > len(snaps) {
		return "", fmt.Errorf("%w: no entry at position %d", history.ErrNotFound, n)
	}
	return snaps[n-1].ID, nil
}
