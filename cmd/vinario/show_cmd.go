package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codigovinario/vinario/internal/catalog"
	"github.com/codigovinario/vinario/internal/cli"
	"github.com/codigovinario/vinario/internal/render"
)

func showCmd() *cobra.Command {
	var htmlOut bool
	cmd := &cobra.Command{
		Use:   "show <slug>",
		Short: "Print one review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadRuntime()
			if err != nil {
				return err
			}
			defer env.close()

			doc, err := env.store.Document(args[0])
			if errors.Is(err, catalog.ErrNotFound) {
				return fmt.Errorf("no review with slug %q", args[0])
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if htmlOut {
				body, err := render.Markdown(doc.Body)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, body)
				return nil
			}

			fmt.Fprintf(out, "%s%s%s\n", cli.Bold, doc.Title, cli.Reset)
			if byline := render.Byline(doc.Summary); byline != "" {
				fmt.Fprintln(out, byline)
			}
			if doc.Date != "" {
				fmt.Fprintf(out, "Fecha: %s\n", doc.Date)
			}
			if score := render.Score(doc.Summary); score != "" {
				fmt.Fprintf(out, "Puntaje: %s\n", score)
			}
			fmt.Fprintf(out, "%s%s%s\n\n", cli.Dim, cli.ShortenHome(doc.Path), cli.Reset)
			fmt.Fprintln(out, doc.Body)
			return nil
		},
	}
	cmd.Flags().BoolVar(&htmlOut, "html", false, "Print the rendered HTML body instead")
	return cmd
}
