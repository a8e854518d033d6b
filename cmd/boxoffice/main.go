// Command boxoffice serves the Lights, Camera, Data! box-office site.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lightscameradata/boxoffice/api"
	"github.com/lightscameradata/boxoffice/internal/config"
	"github.com/lightscameradata/boxoffice/internal/logging"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set by the root command's pre-run.
var (
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "boxoffice",
	Short: "Lights, Camera, Data! box-office analysis site",
	Long: `Lights, Camera, Data!
Serves the box-office analysis site and its release-season chart, and
renders the chart to SVG, PNG, JPG, PDF and interactive HTML files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		logger, err = logging.New(cfg.Logging, os.Stderr)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("boxoffice %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("host") {
			cfg.API.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			cfg.API.Port, _ = cmd.Flags().GetInt("port")
		}
		srv := api.NewServer(cfg, logger, version)
		return srv.ListenAndServe(cfg.API.Addr())
	},
}

func init() {
	serveCmd.Flags().String("host", "", "listen host (overrides api.host)")
	serveCmd.Flags().Int("port", 0, "listen port (overrides api.port)")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and chart data sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "═══════════════════════════════════════")
		fmt.Fprintln(w, "  Lights, Camera, Data! Status")
		fmt.Fprintln(w, "═══════════════════════════════════════")
		fmt.Fprintf(w, "  Version:     %s (%s)\n", version, commit)
		fmt.Fprintf(w, "  Web server:  %s\n", cfg.API.Addr())
		fmt.Fprintf(w, "  Render dir:  %s (%v)\n", cfg.Render.OutputDir, cfg.Render.Formats)
		fmt.Fprintf(w, "  Logging:     %s/%s\n", cfg.Logging.Level, cfg.Logging.Format)
		fmt.Fprintln(w)

		fmt.Fprintln(w, "  Chart sources:")
		for _, s := range config.CheckSources(cfg) {
			origin := "config"
			if s.FromEnv {
				origin = "env"
			}
			fmt.Fprintf(w, "    %-20s %-8s %s (%s)\n", s.Chart+":", s.Kind, s.Location, origin)
		}

		fmt.Fprintln(w, "═══════════════════════════════════════")
		return nil
	},
}
