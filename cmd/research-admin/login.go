// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// passwordEnv supplies the password when --password is not given.
const passwordEnv = "RESEARCH_ADMIN_PASSWORD"

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in and store the session",
	Long: `Login exchanges credentials for an access/refresh token pair and stores them
with the confirmed user profile. With --remember (session.remember, on by
default) the session is kept in the durable store under session.state_dir;
otherwise it lasts for this process only.

The password is read from --password or ` + passwordEnv + `.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and clear stored tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.build(cmd.Context()); err != nil {
			return err
		}
		if err := app.auth.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.build(cmd.Context()); err != nil {
			return err
		}
		u := app.session.User()
		if u == nil {
			return fmt.Errorf("not logged in")
		}
		return render(cmd, u, func(w io.Writer) {
			row(w, "USER", u.Username)
			row(w, "NAME", u.Name)
			row(w, "ROLES", strings.Join(u.Roles, ","))
			row(w, "DEPARTMENT", u.Department)
			row(w, "STORE", app.session.Tier())
		})
	},
}

func init() {
	loginCmd.Flags().StringP("password", "p", "", "password (default: $"+passwordEnv+")")
	loginCmd.Flags().Bool("remember", true, "keep the session across invocations (default: session.remember)")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	if err := app.build(cmd.Context()); err != nil {
		return err
	}
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv(passwordEnv)
	}
	remember := app.cfg.Session.Remember
	if cmd.Flags().Changed("remember") {
		remember, _ = cmd.Flags().GetBool("remember")
	}

	u, err := app.auth.Login(cmd.Context(), args[0], password, remember)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s)\n", u.Name, strings.Join(u.Roles, ", "))
	return nil
}
