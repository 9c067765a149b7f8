package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	bloom "github.com/gdkrmr/koehler-et-al-prymnesium-bloom"
	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/cds"
)

var (
	control string
	verbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bloom",
	Short: "Oder river Prymnesium bloom analysis",
	Long: `bloom reproduces the river-scale analysis of the 2022 Oder fish-kill:
EFAS reanalysis discharge, river-network distances, chlorophyll-a samples
and gauge records joined into a set of diagnostic figures and tables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <dir>",
	Short: "Retrieve EFAS discharge years from the Climate Data Store",
	Long: `download submits one EFAS-historical request per year and streams the
resulting archives into <dir>, unpacking each to NetCDF. Credentials are read
from CDSAPI_URL and CDSAPI_KEY (UID:APIKEY), as the cdsapi client expects.
Years already on disk are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		y0, _ := cmd.Flags().GetInt("from")
		y1, _ := cmd.Flags().GetInt("to")
		if y1 < y0 {
			return fmt.Errorf("year range %d-%d is empty", y0, y1)
		}
		dir := args[0]
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}

		c, err := cds.NewFromEnv()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		for y := y0; y <= y1; y++ {
			logger.Info("retrieving year", zap.Int("year", y))
			zipfp, err := c.Retrieve(ctx, y, dir)
			if err != nil {
				return fmt.Errorf("year %d: %w", y, err)
			}
			ncs, err := cds.Extract(zipfp, dir)
			if err != nil {
				return fmt.Errorf("year %d: %w", y, err)
			}
			logger.Info("extracted", zap.Int("year", y), zap.Strings("files", ncs))
		}
		return nil
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the model domain and cache it to gob",
	Long: `build assembles the river network, discharge archive, chlorophyll
matches, gauges and places from the control file, caching the expensive parts
next to the control-file prefix. Subsequent runs reuse the caches.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bloom.LoadConfig(control)
		if err != nil {
			return err
		}
		d, err := cfg.Build()
		if err != nil {
			return err
		}
		logger.Info("domain built",
			zap.Int("vertices", len(d.Net.V)),
			zap.Int("cells", len(d.Arc.Q)),
			zap.Int("observations", len(d.Obs)),
			zap.Int("dropped", d.NDropped),
			zap.Int("gauges", len(d.Gauges)),
			zap.Int("towns", len(d.Towns)))
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the full analysis and render figures and tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bloom.LoadConfig(control)
		if err != nil {
			return err
		}
		if err := bloom.Run(cfg); err != nil {
			return err
		}
		logger.Info("report written", zap.String("dir", cfg.OutDir()))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&control, "control", "c", "bloom.dat", "control file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	downloadCmd.Flags().Int("from", 1991, "first year to retrieve")
	downloadCmd.Flags().Int("to", 2022, "last year to retrieve")

	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
