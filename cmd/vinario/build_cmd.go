package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/codigovinario/vinario/internal/cli"
	"github.com/codigovinario/vinario/internal/export"
	"github.com/codigovinario/vinario/internal/web"
)

func buildCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Export the reviews site as static files",
		Long: `Render the listing, one page per review and the JSON API into a
directory of static files. The output directory is emptied first.

Examples:
  vinario build                # writes ./public
  vinario build --out dist`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadRuntime()
			if err != nil {
				return err
			}
			defer env.close()

			if cmd.Flags().Changed("out") {
				env.cfg.Build.OutputDir = out
			}
			stats, err := export.Build(env.store, export.Options{
				OutputDir: env.cfg.Build.OutputDir,
				StaticDir: env.cfg.Build.StaticDir,
				Web:       web.OptionsFromConfig(env.cfg, Version),
			}, env.logger.Named("export"))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%sBuilt%s %s pages (%s reviews, %s static files) into %s in %s\n",
				cli.Green, cli.Reset,
				cli.FormatNumber(stats.Pages), cli.FormatNumber(stats.Reviews), cli.FormatNumber(stats.StaticFiles),
				cli.ShortenHome(env.cfg.Build.OutputDir), stats.Duration.Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output directory (default from config, public)")
	return cmd
}
