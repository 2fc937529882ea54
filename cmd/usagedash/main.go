// Package main is the entry point for the device usage dashboard. It loads
// configuration, wires the ClickHouse-backed services and runs either the
// Bubble Tea program or a one-shot CLI command.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/j-veylop/device-usage-dashboard/internal/app"
	"github.com/j-veylop/device-usage-dashboard/internal/config"
	"github.com/j-veylop/device-usage-dashboard/internal/logger"
	"github.com/j-veylop/device-usage-dashboard/internal/models"
	"github.com/j-veylop/device-usage-dashboard/internal/services"
	"github.com/j-veylop/device-usage-dashboard/internal/ui/tabs/apps"
	"github.com/j-veylop/device-usage-dashboard/internal/ui/tabs/controls"
	"github.com/j-veylop/device-usage-dashboard/internal/ui/tabs/info"
	"github.com/j-veylop/device-usage-dashboard/internal/ui/tabs/overview"
	"github.com/j-veylop/device-usage-dashboard/internal/ui/tabs/patterns"
	"github.com/j-veylop/device-usage-dashboard/internal/version"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// rangeFlags are the --start/--end flags shared by the root and export
// commands.
type rangeFlags struct {
	start string
	end   string
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "Start date (YYYY-MM-DD), default 7 days ago")
	cmd.Flags().StringVar(&f.end, "end", "", "End date (YYYY-MM-DD), default today")
}

func (f *rangeFlags) set() bool {
	return f.start != "" || f.end != ""
}

// resolve fills missing bounds from the default range and validates the
// result against now.
func (f *rangeFlags) resolve(now time.Time) (models.DateRange, error) {
	def := models.DefaultDateRange(now)
	start, end := f.start, f.end
	if start == "" {
		start = def.Start.Format(models.DateLayout)
	}
	if end == "" {
		end = def.End.Format(models.DateLayout)
	}
	r, err := models.ParseDateRange(start, end)
	if err != nil {
		return models.DateRange{}, err
	}
	if err := r.Validate(now); err != nil {
		return models.DateRange{}, err
	}
	return r, nil
}

// buildRootCmd creates the root command with all subcommands attached.
func buildRootCmd() *cobra.Command {
	var (
		dates rangeFlags
		debug bool
	)

	cmd := &cobra.Command{
		Use:   version.Name,
		Short: "Device usage analytics dashboard for ClickHouse",
		Long: `Interactive terminal dashboard over the device_usage_stat table.

Load a date range, then browse KPIs, per-app reach and engagement metrics,
hourly and weekly usage patterns and device distributions. Partner and brand
filters and CSV export are available on the Controls tab.

Configuration is read from .env files and the environment:
  CLICKHOUSE_URL, CLICKHOUSE_DATABASE, HTTP_TIMEOUT, EXPORT_DIR,
  LOG_FILE, DEBUG, NOTIFY_ON_LOAD, WATCH_ENV`,
		Example: `  # Start with an empty dashboard
  usagedash

  # Load a range immediately
  usagedash --start 2026-03-01 --end 2026-03-07`,
		Version:      version.Info(),
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), &dates, debug)
		},
	}
	dates.register(cmd)
	cmd.Flags().BoolVar(&debug, "debug", false, "Record response diagnostics and log at debug level")
	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.AddCommand(buildExportCmd(), buildVersionCmd())
	return cmd
}

// setup loads configuration and starts logging. The returned func releases
// the log file.
func setup(debug bool) (*config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if debug {
		cfg.Debug = true
	}

	closer, err := logger.Init(cfg.LogFile, cfg.Debug)
	if err != nil {
		return nil, nil, err
	}
	return cfg, func() { _ = closer.Close() }, nil
}

// runTUI runs the Bubble Tea program until the user quits.
func runTUI(ctx context.Context, dates *rangeFlags, debug bool) error {
	var initial *models.DateRange
	if dates.set() {
		r, err := dates.resolve(time.Now())
		if err != nil {
			return err
		}
		initial = &r
	}

	cfg, closeLog, err := setup(debug)
	if err != nil {
		return err
	}
	defer closeLog()

	mgr, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := mgr.Close(); closeErr != nil {
			logger.Warn("error closing services", "error", closeErr)
		}
	}()

	model := app.NewModel(mgr)
	state := model.GetState()
	model.SetTabs([]app.Tab{
		overview.New(state),
		apps.New(state),
		patterns.New(state),
		controls.New(state),
		info.New(state, cfg),
	})
	if initial != nil {
		model.LoadOnStart(*initial)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	logger.Info("starting dashboard", "version", version.GetVersion(), "endpoint", cfg.ClickHouseURL)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
