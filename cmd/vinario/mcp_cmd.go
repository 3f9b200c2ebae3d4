package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codigovinario/vinario/internal/config"
	mcpserver "github.com/codigovinario/vinario/internal/mcp"
	"github.com/codigovinario/vinario/internal/setup"
)

func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the AI tool integration server (MCP) on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadRuntime()
			if err != nil {
				return err
			}
			defer env.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return mcpserver.Serve(ctx, env.store, mcpserver.Options{
				Locale:          env.cfg.LocaleTag(),
				FilterInjection: env.cfg.MCP.FilterInjection,
				Version:         Version,
			}, env.logger.Named("mcp"))
		},
	}

	var dir string
	install := &cobra.Command{
		Use:   "install",
		Short: "Register vinario in the project's .mcp.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			existed := setup.MCPInstalled(dir)
			path, err := setup.InstallMCP(dir, cfg.Content.Dir)
			if err != nil {
				return err
			}
			if existed {
				fmt.Fprintf(cmd.OutOrStdout(), "  vinario already registered; updated %s\n", path)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  → %s (MCP server %q)\n", path, setup.ServerName)
			return nil
		},
	}
	install.Flags().StringVar(&dir, "dir", ".", "Project directory holding .mcp.json")

	remove := &cobra.Command{
		Use:   "remove",
		Short: "Remove vinario from the project's .mcp.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := setup.RemoveMCP(dir)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintln(cmd.OutOrStdout(), "  vinario not registered in .mcp.json")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "  Removed vinario from .mcp.json")
			return nil
		},
	}
	remove.Flags().StringVar(&dir, "dir", ".", "Project directory holding .mcp.json")

	cmd.AddCommand(install, remove)
	return cmd
}
