// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-admin/internal/api"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "Manage the result type catalog",
}

var typesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List result types",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.Client(cmd.Context(), "/admin/result-types")
		if err != nil {
			return err
		}
		all, _ := cmd.Flags().GetBool("all")
		page, err := c.AchievementTypes(cmd.Context(), api.PageQuery{}, all)
		if err != nil {
			return err
		}
		return render(cmd, page, func(w io.Writer) {
			row(w, "DOCUMENT", "CODE", "NAME", "DELETED")
			for _, t := range page.List {
				row(w, t.DocumentID, t.TypeCode, t.TypeName, t.IsDelete == 1)
			}
		})
	},
}

var typesDeleteCmd = &cobra.Command{
	Use:   "delete <document-id>",
	Short: "Logically delete a result type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.Client(cmd.Context(), "/admin/result-types")
		if err != nil {
			return err
		}
		t, err := c.DeleteAchievementType(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s (%s)\n", t.DocumentID, t.TypeName)
		return nil
	},
}

func init() {
	typesListCmd.Flags().Bool("all", false, "include deleted types")

	typesCmd.AddCommand(typesListCmd, typesDeleteCmd)
	rootCmd.AddCommand(typesCmd)
}
