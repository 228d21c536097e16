// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-admin/internal/api"
	"github.com/pdiddy/research-admin/pkg/types"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List, inspect and review research results",
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List results matching filters",
	Long: `List pages through results. Filters combine with AND; --status accepts a
comma-separated list in either vocabulary (published or APPROVED). --mine lists
only your own results.`,
	RunE: runResultsList,
}

var resultsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one result with its review history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.Client(cmd.Context(), "/results/"+args[0])
		if err != nil {
			return err
		}
		r, err := c.Result(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return render(cmd, r, func(w io.Writer) { printResult(w, r) })
	},
}

var resultsSubmitCmd = &cobra.Command{
	Use:   "submit <id>",
	Short: "Send a result for review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.Client(cmd.Context(), "/results/"+args[0]+"/edit")
		if err != nil {
			return err
		}
		r, err := c.SubmitResult(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return render(cmd, r, func(w io.Writer) { row(w, r.ID, r.Status) })
	},
}

var resultsReviewCmd = &cobra.Command{
	Use:   "review <id>",
	Short: "Approve, reject or request changes on a result",
	Long: `Review records a decision on a result under review. --action is approve,
reject or changes; --comment is stored in the review history.`,
	Args: cobra.ExactArgs(1),
	RunE: runResultsReview,
}

func init() {
	f := resultsListCmd.Flags()
	f.String("keyword", "", "match title, abstract or authors")
	f.StringSlice("status", nil, "statuses, comma-separated")
	f.String("type", "", "result type id")
	f.String("author", "", "author name")
	f.String("source", "", "manual_upload or process_system")
	f.String("project", "", "project id")
	f.String("phase", "", "project phase")
	f.IntSlice("years", nil, "year range as FROM,TO")
	f.Int("page", 1, "page number")
	f.Int("page-size", 10, "results per page")
	f.Bool("mine", false, "only results you created")

	resultsReviewCmd.Flags().String("action", api.ReviewApprove, "approve, reject or changes")
	resultsReviewCmd.Flags().String("comment", "", "review comment")

	resultsCmd.AddCommand(resultsListCmd, resultsGetCmd, resultsSubmitCmd, resultsReviewCmd)
	rootCmd.AddCommand(resultsCmd)
}

func runResultsList(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	mine, _ := f.GetBool("mine")
	route := "/results/list"
	if mine {
		route = "/results/my"
	}
	c, err := app.Client(cmd.Context(), route)
	if err != nil {
		return err
	}

	var q api.ResultQuery
	q.Keyword, _ = f.GetString("keyword")
	q.Statuses, _ = f.GetStringSlice("status")
	q.Type, _ = f.GetString("type")
	q.Author, _ = f.GetString("author")
	q.Source, _ = f.GetString("source")
	q.ProjectID, _ = f.GetString("project")
	q.Phase, _ = f.GetString("phase")
	q.Page, _ = f.GetInt("page")
	q.PageSize, _ = f.GetInt("page-size")
	if years, _ := f.GetIntSlice("years"); len(years) == 2 {
		q.YearFrom, q.YearTo = years[0], years[1]
	} else if len(years) != 0 {
		return fmt.Errorf("--years wants FROM,TO")
	}

	list := c.ListResults
	if mine {
		list = c.MyResults
	}
	page, err := list(cmd.Context(), q)
	if err != nil {
		return err
	}
	return render(cmd, page, func(w io.Writer) {
		row(w, "ID", "STATUS", "TYPE", "YEAR", "TITLE", "PROJECT")
		for _, r := range page.List {
			row(w, r.ID, r.Status, r.Type, r.Year, truncate(r.Title, 48), r.ProjectCode)
		}
		pageFooter(w, len(page.List), page.Total, page.Page)
	})
}

func runResultsReview(cmd *cobra.Command, args []string) error {
	c, err := app.Client(cmd.Context(), "/expert/reviews")
	if err != nil {
		return err
	}
	action, _ := cmd.Flags().GetString("action")
	comment, _ := cmd.Flags().GetString("comment")

	var r *types.Result
	switch action {
	case api.ReviewApprove, api.ReviewReject:
		r, err = c.ReviewResult(cmd.Context(), args[0], action, comment)
	case "changes":
		r, err = c.RequestChanges(cmd.Context(), args[0], comment)
	default:
		return fmt.Errorf("unknown review action %q", action)
	}
	if err != nil {
		return err
	}
	return render(cmd, r, func(w io.Writer) { row(w, r.ID, r.Status) })
}

func printResult(w io.Writer, r *types.Result) {
	row(w, "ID", r.ID)
	row(w, "TITLE", r.Title)
	row(w, "TYPE", r.Type)
	row(w, "STATUS", r.Status)
	row(w, "AUTHORS", strings.Join(r.Authors, ", "))
	row(w, "PROJECT", strings.TrimSpace(r.ProjectCode+" "+r.ProjectName))
	row(w, "SOURCE", r.Source)
	row(w, "FORMAT", r.FormatStatus)
	row(w, "REVIEWERS", strings.Join(r.AssignedReviewers, ", "))
	row(w, "CREATED", r.CreatedBy+" "+r.CreatedAt)
	for _, h := range r.ReviewHistory {
		row(w, "REVIEW", h.CreatedAt+" "+h.ReviewerName+" "+h.Action+": "+h.Comment)
	}
}
