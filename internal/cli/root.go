// Package cli defines the Cobra commands of the tally CLI.
// This file contains the root command and the per-invocation service wiring.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/tally/internal/config"
	"github.com/mmynk/tally/internal/metrics"
	"github.com/mmynk/tally/internal/service"
	"github.com/mmynk/tally/internal/storage/sqlite"
	"github.com/mmynk/tally/pkg/logging"
)

var version = "dev" // set via ldflags at build time

// app carries the flags and the services opened for one invocation.
type app struct {
	configPath string
	dbPath     string
	logLevel   string
	label      string
	yes        bool

	cfg     *config.Config
	store   *sqlite.SQLiteStore
	svc     *service.TallyService
	metrics *metrics.Metrics
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "tally",
		Short: "Track products, quantities, prices and the change owed",
		Long: `Tally keeps a running shopping session: products with quantity and
unit price, the total due, the cash received and what is left. The session
is saved after every change and past sessions are kept in a history.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          a.run(a.runShow),
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.DefaultFile, "Path to the YAML config file")
	flags.StringVar(&a.dbPath, "db", "", "SQLite database path (overrides config)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flags.StringVar(&a.label, "label", "", "Label for a history entry created by this command")
	flags.BoolVarP(&a.yes, "yes", "y", false, "Confirm destructive actions without prompting")

	root.AddCommand(
		a.showCmd(),
		a.addCmd(),
		a.draftCmd(),
		a.editCmd(),
		a.incCmd(),
		a.decCmd(),
		a.rmCmd(),
		a.cashCmd(),
		a.clearCmd(),
		a.langCmd(),
		a.historyCmd(),
		a.configCmd(),
	)
	return root
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run opens the services before fn and closes them after it, whether or not
// fn fails, so pending session writes always reach the database.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		if err := a.open(cmd.Context()); err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, a.close())
		}()
		return fn(cmd, args)
	}
}

func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.DatabasePath = a.dbPath
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	logging.Setup(cfg.LogLevel)

	policy, err := cfg.QuantityPolicy()
	if err != nil {
		return err
	}

	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	a.cfg = cfg
	a.store = store
	a.metrics = metrics.New()
	a.svc = service.NewTallyService(ctx, store, service.Options{
		ArchiveOnDelete:  cfg.ArchiveOnDelete,
		QuantityPolicy:   policy,
		AutosaveDebounce: cfg.AutosaveDebounce,
	}, a.metrics)
	if a.label != "" {
		a.svc.SetLabel(a.label)
	}
	slog.Debug("Opened session", "db", cfg.DatabasePath, "bound_to", a.svc.BoundID())
	return nil
}

func (a *app) close() error {
	if a.svc == nil {
		return nil
	}
	var errs []error
	if err := a.svc.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush session: %w", err))
	}
	if a.cfg.MetricsFile != "" {
		if err := a.metrics.WriteFile(a.cfg.MetricsFile); err != nil {
			slog.Warn("Failed to write metrics file", "path", a.cfg.MetricsFile, "error", err)
		}
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}
	a.svc, a.store = nil, nil
	return errors.Join(errs...)
}

// localizer returns the printer for the live session's language.
func (a *app) localizer() localizer {
	return newLocalizer(a.svc.State().Arabic)
}

// canceled reports a declined confirmation as a plain message.
func (a *app) canceled(w io.Writer, err error) error {
	if errors.Is(err, service.ErrCanceled) {
		l := a.localizer()
		fmt.Fprintln(w, l.line(l.T(msgCanceled)))
		return nil
	}
	return err
}
