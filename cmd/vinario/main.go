// Package main is the entrypoint for the vinario CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codigovinario/vinario/internal/catalog"
	"github.com/codigovinario/vinario/internal/config"
	"github.com/codigovinario/vinario/internal/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vinario",
		Short: "Código Vinario wine reviews",
		Long:  "vinario serves, searches and exports the Código Vinario wine review catalog.",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(buildCmd())
	root.AddCommand(listCmd())
	root.AddCommand(showCmd())
	root.AddCommand(mcpCmd())
	root.AddCommand(configCmd())
	root.AddCommand(versionCmd())

	root.PersistentFlags().StringVar(&config.ConfigOverride, "config", "", "Path to vinario.toml (overrides auto-detect)")
	root.PersistentFlags().StringVar(&config.ContentOverride, "content", "", "Content directory holding the review files")

	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the vinario version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vinario %s\n", Version)
		},
	}
}

// runtimeEnv is what most commands need: merged config, a logger, and the
// catalog loaded from the configured content directory.
type runtimeEnv struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *catalog.Store
}

func loadRuntime() (*runtimeEnv, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	store, err := catalog.NewStore(cfg.Content.Dir, catalogOptions(cfg, logger.Named("catalog")))
	if err != nil {
		logger.Sync()
		return nil, err
	}
	return &runtimeEnv{cfg: cfg, logger: logger, store: store}, nil
}

func (e *runtimeEnv) close() {
	_ = e.logger.Sync()
}

func catalogOptions(cfg *config.Config, logger *zap.Logger) catalog.Options {
	return catalog.Options{
		Extensions: cfg.Content.Extensions,
		Locale:     cfg.LocaleTag(),
		Logger:     logger,
	}
}
