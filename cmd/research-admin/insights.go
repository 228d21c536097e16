// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-admin/internal/api"
)

var demandsCmd = &cobra.Command{
	Use:   "demands",
	Short: "Browse industry demands and rematch them to results",
}

var demandsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List captured demands",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.Client(cmd.Context(), "/insights/demands")
		if err != nil {
			return err
		}
		f := cmd.Flags()
		var q api.DemandQuery
		q.Keyword, _ = f.GetString("keyword")
		q.Industry, _ = f.GetString("industry")
		q.Region, _ = f.GetString("region")
		q.Status, _ = f.GetString("status")
		q.Page, _ = f.GetInt("page")
		q.PageSize, _ = f.GetInt("page-size")

		page, err := c.Demands(cmd.Context(), q)
		if err != nil {
			return err
		}
		return render(cmd, page, func(w io.Writer) {
			row(w, "ID", "STATUS", "BEST", "INDUSTRY", "REGION", "TITLE")
			for _, d := range page.List {
				row(w, d.ID, d.Status, fmt.Sprintf("%.2f", d.BestMatchScore), d.Industry, d.Region, truncate(d.Title, 48))
			}
			pageFooter(w, len(page.List), page.Total, page.Page)
		})
	},
}

var demandsRematchCmd = &cobra.Command{
	Use:   "rematch <id>",
	Short: "Rescore a demand's candidate results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.Client(cmd.Context(), "/insights/demands")
		if err != nil {
			return err
		}
		d, err := c.RematchDemand(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return render(cmd, d, func(w io.Writer) {
			row(w, "RESULT", "SCORE", "OWNER", "TITLE")
			for _, m := range d.Matches {
				row(w, m.ResultID, fmt.Sprintf("%.2f", m.MatchScore), m.Owner, truncate(m.ResultTitle, 48))
			}
			fmt.Fprintf(w, "\n%s: best %.2f\n", d.Status, d.BestMatchScore)
		})
	},
}

var crawlerCmd = &cobra.Command{
	Use:   "crawler",
	Short: "Inspect and test the demand crawler's sources",
}

var crawlerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List crawler sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.Client(cmd.Context(), "/admin/system-settings")
		if err != nil {
			return err
		}
		sources, err := c.CrawlerSources(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd, sources, func(w io.Writer) {
			row(w, "ID", "STATUS", "ENABLED", "EVERY", "NAME", "URL")
			for _, s := range sources {
				row(w, s.ID, s.Status, s.Enabled, fmt.Sprintf("%dh", s.FrequencyHours), s.Name, s.BaseURL)
			}
		})
	},
}

var crawlerTestCmd = &cobra.Command{
	Use:   "test <id>",
	Short: "Probe a crawler source's connection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.Client(cmd.Context(), "/admin/system-settings")
		if err != nil {
			return err
		}
		s, err := c.TestCrawlerSource(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return render(cmd, s, func(w io.Writer) { row(w, s.ID, s.Status, s.LastSuccessAt) })
	},
}

func init() {
	f := demandsListCmd.Flags()
	f.String("keyword", "", "match title, summary or keywords")
	f.String("industry", "", "industry")
	f.String("region", "", "region")
	f.String("status", "", "matched or unmatched")
	f.Int("page", 1, "page number")
	f.Int("page-size", 10, "demands per page")

	demandsCmd.AddCommand(demandsListCmd, demandsRematchCmd)
	crawlerCmd.AddCommand(crawlerListCmd, crawlerTestCmd)
	rootCmd.AddCommand(demandsCmd, crawlerCmd)
}
