package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/j-veylop/device-usage-dashboard/internal/logger"
	"github.com/j-veylop/device-usage-dashboard/internal/models"
	"github.com/j-veylop/device-usage-dashboard/internal/services"
	"github.com/j-veylop/device-usage-dashboard/internal/version"
)

// buildExportCmd creates the "export" command that fetches a range and
// writes its app metrics CSV without starting the UI.
func buildExportCmd() *cobra.Command {
	var (
		dates    rangeFlags
		partners []string
		brands   []string
		outDir   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch a date range and write app metrics to CSV",
		Example: `  # Last 7 days to the configured export directory
  usagedash export

  # One partner and two brands into ./out
  usagedash export --start 2026-03-01 --end 2026-03-07 --partner acme --brand Pixel --brand Galaxy --out ./out`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := dates.resolve(time.Now())
			if err != nil {
				return err
			}
			f := models.Filter{}
			if cmd.Flags().Changed("partner") {
				f.Partners = partners
			}
			if cmd.Flags().Changed("brand") {
				f.Brands = brands
			}
			path, n, err := runExport(cmd.Context(), r, f, outDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s apps to %s\n", humanize.Comma(int64(n)), path)
			return nil
		},
	}

	dates.register(cmd)
	cmd.Flags().StringSliceVar(&partners, "partner", nil, "Only include this partner (repeatable)")
	cmd.Flags().StringSliceVar(&brands, "brand", nil, "Only include this brand (repeatable)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory, default EXPORT_DIR")

	return cmd
}

func runExport(ctx context.Context, r models.DateRange, f models.Filter, outDir string) (path string, apps int, err error) {
	cfg, closeLog, err := setup(false)
	if err != nil {
		return "", 0, err
	}
	defer closeLog()
	cfg.WatchEnv = false

	mgr, err := services.NewManager(cfg)
	if err != nil {
		return "", 0, fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() { _ = mgr.Close() }()

	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.With("range", r.String())
	log.Info("export started")

	table, err := mgr.Load(ctx, r)
	if err != nil {
		return "", 0, fmt.Errorf("failed to load data: %w", err)
	}
	mgr.SetFilter(f)

	path, err = mgr.Export(outDir)
	if err != nil {
		return "", 0, fmt.Errorf("export failed: %w", err)
	}
	apps = len(mgr.Current().Metrics)
	log.Info("export finished", "records", table.Len(), "apps", apps, "path", path)
	return path, apps, nil
}

// buildVersionCmd creates the "version" command.
func buildVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}
