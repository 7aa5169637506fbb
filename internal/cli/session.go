package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/tally/internal/calculator"
	"github.com/mmynk/tally/internal/session"
)

// parseIndex turns a 1-based position from the command line into a slice index.
func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a position", session.ErrIndex, arg)
	}
	return n - 1, nil
}

func (a *app) show(cmd *cobra.Command) {
	renderSession(cmd.OutOrStdout(), a.svc.State(), a.svc.BoundID())
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE:  a.run(a.runShow),
	}
}

func (a *app) runShow(cmd *cobra.Command, args []string) error {
	a.show(cmd)
	return nil
}

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [NAME QUANTITY PRICE]",
		Short: "Add a product",
		Long: `Add a product line. Quantity and price are free text: every character
other than digits and '.' is dropped. Without arguments the staged draft
(see "tally draft") is added.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 3 {
				return fmt.Errorf("accepts 0 or 3 arg(s), received %d", len(args))
			}
			return nil
		},
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			var err error
			if len(args) == 0 {
				err = a.svc.CommitDraft(cmd.Context())
			} else {
				err = a.svc.AddItem(cmd.Context(), args[0],
					calculator.SanitizeNumeric(args[1]),
					calculator.SanitizeNumeric(args[2]))
			}
			if err != nil {
				return err
			}
			a.show(cmd)
			return nil
		}),
	}
}

func (a *app) draftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "draft NAME QUANTITY PRICE",
		Short: "Stage a product without adding it",
		Args:  cobra.ExactArgs(3),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			a.svc.SetDraft(cmd.Context(), args[0], args[1], args[2])
			a.show(cmd)
			return nil
		}),
	}
}

func (a *app) editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit POSITION FIELD VALUE",
		Short: "Change the name, quantity or price of a product",
		Args:  cobra.ExactArgs(3),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			field, err := session.ParseField(args[1])
			if err != nil {
				return err
			}
			if err := a.svc.UpdateItem(cmd.Context(), index, field, args[2]); err != nil {
				return err
			}
			a.show(cmd)
			return nil
		}),
	}
}

func (a *app) incCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inc POSITION",
		Short: "Add one to a product's quantity",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			if err := a.svc.IncrementQuantity(cmd.Context(), index); err != nil {
				return err
			}
			a.show(cmd)
			return nil
		}),
	}
}

func (a *app) decCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dec POSITION",
		Short: "Take one from a product's quantity",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			if err := a.svc.DecrementQuantity(cmd.Context(), index); err != nil {
				return err
			}
			a.show(cmd)
			return nil
		}),
	}
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm POSITION",
		Aliases: []string{"remove"},
		Short:   "Remove a product after confirmation",
		Args:    cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			c := a.confirmer(cmd.InOrStdin(), cmd.OutOrStdout())
			if err := a.svc.RemoveItem(cmd.Context(), index, c); err != nil {
				return a.canceled(cmd.OutOrStdout(), err)
			}
			a.show(cmd)
			return nil
		}),
	}
}

func (a *app) cashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cash AMOUNT",
		Short: "Set the cash received",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			a.svc.SetCashReceived(cmd.Context(), args[0])
			a.show(cmd)
			return nil
		}),
	}
}

func (a *app) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Save the session to history and start an empty one",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			c := a.confirmer(cmd.InOrStdin(), cmd.OutOrStdout())
			if err := a.svc.ClearAll(cmd.Context(), c); err != nil {
				return a.canceled(cmd.OutOrStdout(), err)
			}
			a.show(cmd)
			return nil
		}),
	}
}

func (a *app) langCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lang",
		Short: "Switch between English and Arabic",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			a.svc.ToggleLanguage(cmd.Context())
			l := a.localizer()
			fmt.Fprintln(cmd.OutOrStdout(), l.line(l.T(msgLanguage)))
			return nil
		}),
	}
}
