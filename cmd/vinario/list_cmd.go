package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codigovinario/vinario/internal/cli"
	"github.com/codigovinario/vinario/internal/review"
	"github.com/codigovinario/vinario/internal/web"
)

func listCmd() *cobra.Command {
	var (
		text     string
		varietal string
		region   string
		sortKey  string
		jsonOut  bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reviews with the site's search, filters and order",
		Long: `List reviews exactly as the listing page would show them.

Examples:
  vinario list
  vinario list --q malbec --sort score_desc
  vinario list --region Mendoza --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sortKey != "" && !review.SortKey(sortKey).Valid() {
				return fmt.Errorf("unknown sort %q (want one of %v)", sortKey, review.SortKeys)
			}
			env, err := loadRuntime()
			if err != nil {
				return err
			}
			defer env.close()

			v := review.NewView(env.store.Snapshot().Reviews,
				review.WithLocale(env.cfg.LocaleTag()),
				review.WithQuery(review.Query{
					Text:     text,
					Varietal: review.ParseFilter(varietal),
					Region:   review.ParseFilter(region),
					Sort:     review.ParseSortKey(sortKey),
				}))

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(web.NewListingPayload(v))
			}
			fmt.Fprintln(out, cli.CountLine(v.VisibleCount(), v.TotalCount()))
			if v.VisibleCount() == 0 {
				return nil
			}
			fmt.Fprintln(out)
			return cli.ReviewTable(out, v.VisibleReviews())
		},
	}
	cmd.Flags().StringVar(&text, "q", "", "Free-text search")
	cmd.Flags().StringVar(&varietal, "varietal", "", "Exact varietal (empty for all)")
	cmd.Flags().StringVar(&region, "region", "", "Exact region (empty for all)")
	cmd.Flags().StringVar(&sortKey, "sort", "", "Order: date_desc, date_asc, score_desc, score_asc, title_asc")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
