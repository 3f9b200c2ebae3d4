package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codigovinario/vinario/internal/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vinario configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), config.ShowConfig(cfg))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print path to the active config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := config.FindConfigFile()
			if p == "" {
				return fmt.Errorf("no config file found; run 'vinario config init'")
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	})

	var path string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented default vinario.toml",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.GenerateConfig(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&path, "path", config.FileName, "Where to write the config file")
	cmd.AddCommand(initCmd)

	return cmd
}
