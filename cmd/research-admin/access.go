// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-admin/internal/api"
)

var accessCmd = &cobra.Command{
	Use:   "access",
	Short: "Request and review full-content access to results",
}

var accessListCmd = &cobra.Command{
	Use:   "list",
	Short: "List access requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.Client(cmd.Context(), "/admin/access-requests")
		if err != nil {
			return err
		}
		var q api.AccessQuery
		q.Keyword, _ = cmd.Flags().GetString("keyword")
		q.Status, _ = cmd.Flags().GetString("status")
		q.Page, _ = cmd.Flags().GetInt("page")
		q.PageSize, _ = cmd.Flags().GetInt("page-size")

		page, err := c.AccessRequests(cmd.Context(), q)
		if err != nil {
			return err
		}
		return render(cmd, page, func(w io.Writer) {
			row(w, "ID", "STATUS", "RESULT", "USER", "CREATED", "REASON")
			for _, a := range page.List {
				row(w, a.ID, a.Status, truncate(a.ResultTitle, 36), a.UserName, a.CreatedAt, truncate(a.Reason, 40))
			}
			pageFooter(w, len(page.List), page.Total, page.Page)
		})
	},
}

var accessRequestCmd = &cobra.Command{
	Use:   "request <result-id>",
	Short: "Ask for full access to a restricted result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.Client(cmd.Context(), "/results/"+args[0])
		if err != nil {
			return err
		}
		reason, _ := cmd.Flags().GetString("reason")
		a, err := c.RequestAccess(cmd.Context(), args[0], reason)
		if err != nil {
			return err
		}
		return render(cmd, a, func(w io.Writer) { row(w, a.ID, a.Status, a.ResultID) })
	},
}

var accessReviewCmd = &cobra.Command{
	Use:   "review <request-id>",
	Short: "Approve or reject an access request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.Client(cmd.Context(), "/admin/access-requests")
		if err != nil {
			return err
		}
		action, _ := cmd.Flags().GetString("action")
		comment, _ := cmd.Flags().GetString("comment")
		a, err := c.ReviewAccessRequest(cmd.Context(), args[0], action, comment)
		if err != nil {
			return err
		}
		return render(cmd, a, func(w io.Writer) { row(w, a.ID, a.Status, a.Reviewer, a.Comment) })
	},
}

func init() {
	accessListCmd.Flags().String("keyword", "", "match result title or user")
	accessListCmd.Flags().String("status", "", "pending, approved or rejected")
	accessListCmd.Flags().Int("page", 1, "page number")
	accessListCmd.Flags().Int("page-size", 10, "requests per page")

	accessRequestCmd.Flags().String("reason", "", "why you need the full content")

	accessReviewCmd.Flags().String("action", api.ReviewApprove, "approve or reject")
	accessReviewCmd.Flags().String("comment", "", "shown to the requester")

	accessCmd.AddCommand(accessListCmd, accessRequestCmd, accessReviewCmd)
	rootCmd.AddCommand(accessCmd)
}
