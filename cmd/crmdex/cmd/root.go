// Package cmd provides the CLI commands for crmdex.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/crmdex/internal/config"
	"github.com/Aman-CERP/crmdex/internal/crm"
	"github.com/Aman-CERP/crmdex/internal/embed"
	"github.com/Aman-CERP/crmdex/internal/errors"
	"github.com/Aman-CERP/crmdex/internal/logging"
	"github.com/Aman-CERP/crmdex/internal/reindex"
	"github.com/Aman-CERP/crmdex/internal/service"
	"github.com/Aman-CERP/crmdex/pkg/version"
)

var (
	debugMode      bool
	dataFile       string
	loggingCleanup func()

	// Loaded once per invocation in the root pre-run; buildService
	// surfaces loadErr so `crmdex version` still works on a bad config.
	loadedCfg *config.Config
	loadErr   error
)

// NewRootCmd creates the root command for the crmdex CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crmdex",
		Short: "Semantic similarity index over CRM entities",
		Long: `crmdex builds an in-memory vector index over CRM contacts,
companies, and deals, and ranks them by semantic similarity to a query.

The index lives in memory for the lifetime of the process: each CLI
invocation rebuilds it from the configured source before serving the
requested operation. A long-lived transport would hold one service
instance and reindex on demand.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("crmdex version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.crmdex/logs/")
	cmd.PersistentFlags().StringVar(&dataFile, "data", "", "JSON export file to index (contacts/companies/deals arrays)")

	cmd.PersistentPreRunE = rootPreRun
	cmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		if loggingCleanup != nil {
			loggingCleanup()
		}
	}

	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newReindexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// rootPreRun loads config first so the configured log level can shape
// the logger; config errors are held for buildService to surface.
func rootPreRun(_ *cobra.Command, _ []string) error {
	loadedCfg, loadErr = nil, nil
	if cwd, err := os.Getwd(); err == nil {
		loadedCfg, loadErr = config.Load(cwd)
	} else {
		loadErr = err
	}
	setupLogging()
	return nil
}

// setupLogging routes slog to the log file, keeping stdout for results.
func setupLogging() {
	logger, cleanup, err := logging.Setup(loggingConfig(loadedCfg, debugMode))
	if err != nil {
		// Logging is best-effort for the CLI
		return
	}
	slog.SetDefault(logger)
	loggingCleanup = cleanup
}

// loggingConfig merges the file logging defaults with the configured
// level; --debug wins over the config file.
func loggingConfig(cfg *config.Config, debug bool) logging.Config {
	logCfg := logging.DefaultConfig()
	if cfg != nil && cfg.Logging.Level != "" {
		logCfg.Level = cfg.Logging.Level
	}
	if debug {
		logCfg.Level = logging.DebugConfig().Level
	}
	logCfg.WriteToStderr = false
	return logCfg
}

// buildService wires a service from config and flags.
func buildService(ctx context.Context) (*service.Service, *config.Config, error) {
	if loadErr != nil {
		return nil, nil, loadErr
	}
	cfg := loadedCfg

	source, err := openSource(cfg)
	if err != nil {
		return nil, nil, err
	}

	embed.SetOllamaConfig(embed.OllamaConfig{
		Host:  cfg.Embeddings.Host,
		Model: cfg.Embeddings.Model,
	})
	embedder, err := embed.NewEmbedder(ctx, embed.ProviderType(cfg.Embeddings.Provider),
		cfg.Embeddings.Model, cfg.Embeddings.CacheSize)
	if err != nil {
		return nil, nil, err
	}

	svc := service.New(source, embedder, reindex.Config{Timeout: cfg.Reindex.Timeout})
	return svc, cfg, nil
}

// openSource selects the CRM source: the --data export file when given.
// The live API client is a pluggable collaborator behind crm.Source and
// is not bundled with the CLI.
func openSource(cfg *config.Config) (crm.Source, error) {
	if dataFile != "" {
		return crm.NewFileSource(dataFile, cfg.Source.PageSize)
	}
	if cfg.Source.BaseURL != "" {
		return nil, fmt.Errorf("no client for source %s is bundled with the CLI; pass --data <export.json>", cfg.Source.BaseURL)
	}
	return nil, fmt.Errorf("no data source configured; pass --data <export.json>")
}

// Execute runs the root command.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, errors.FormatForCLI(err))
		slog.Error("command failed", slog.Any("details", errors.FormatForLog(err)))
		return err
	}
	return nil
}
