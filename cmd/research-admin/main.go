// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-admin CLI. It drives
// the research management backend, live or mocked in-process, and can
// serve the mock backend over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-admin/internal/config"
	"github.com/pdiddy/research-admin/internal/logging"
	"github.com/pdiddy/research-admin/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// secretsDir is where API credentials are read from at startup.
const secretsDir = ".secrets/"

// app holds the state built once per invocation.
var app *runtime

// rootCmd is the base command for the research-admin CLI.
var rootCmd = &cobra.Command{
	Use:   "research-admin",
	Short: "Administer research results, reviews and industry demands",
	Long: `research-admin talks to the research management backend: it lists and reviews
results, handles access requests, rematches industry demands and manages the
demand crawler and the result type catalog.

With --mock every call is answered by the in-process mock backend. "serve"
exposes the same mock backend over HTTP for front-end development.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		app = rt
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./research-admin.yaml or ~/.config/research-admin/research-admin.yaml)")
	pf.Bool("mock", false, "answer every call from the in-process mock backend")
	pf.StringP("output", "o", outputTable, "output format: table, json or yaml")
	pf.Bool("debug-errors", false, "print the error journal to stderr before exiting")
}

// newRuntime loads secrets and configuration and configures logging.
// The gateway and session are built on first use.
func newRuntime(cmd *cobra.Command) (*runtime, error) {
	bootLog := logging.Configure(defaultLogging(), os.Stderr)
	sec, err := secrets.Load(secretsDir, bootLog)
	if err != nil {
		return nil, err
	}
	if keys := sec.Keys(); len(keys) > 0 {
		bootLog.Debug().Strs("keys", keys).Msg("loaded secrets")
	}

	v := viper.New()
	if err := v.BindPFlag("mock.enabled", cmd.Flags().Lookup("mock")); err != nil {
		return nil, fmt.Errorf("binding --mock: %w", err)
	}
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(v, file, sec)
	if err != nil {
		return nil, err
	}
	log := logging.Configure(cfg.Logging, os.Stderr)
	if used := v.ConfigFileUsed(); used != "" {
		log.Debug().Str("file", used).Msg("using config file")
	}
	return &runtime{cfg: cfg, log: log}, nil
}

func main() {
	err := rootCmd.Execute()
	if app != nil {
		if debug, _ := rootCmd.PersistentFlags().GetBool("debug-errors"); debug {
			dumpJournal(os.Stderr, app)
		}
		if cerr := app.Close(); cerr != nil {
			app.log.Warn().Err(cerr).Msg("closing session store")
		}
	}
	if err != nil {
		if app == nil || app.notifier == nil || !app.notifier.shown(err) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
