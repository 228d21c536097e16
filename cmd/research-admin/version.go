// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"
	goruntime "runtime"

	"github.com/spf13/cobra"
)

// buildInfo identifies the running binary.
type buildInfo struct {
	Version string `json:"version" yaml:"version"`
	Go      string `json:"go" yaml:"go"`
	Target  string `json:"target" yaml:"target"`
}

func currentBuild() buildInfo {
	return buildInfo{Version: version, Go: goruntime.Version(), Target: goruntime.GOOS + "/" + goruntime.GOARCH}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of research-admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentBuild()
		return render(cmd, info, func(w io.Writer) {
			row(w, "research-admin", info.Version, info.Go, info.Target)
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
