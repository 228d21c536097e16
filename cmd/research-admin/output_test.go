// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	goruntime "runtime"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-admin/internal/apperr"
)

func commandWithOutput(format string) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("output", format, "")
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	return cmd, &buf
}

func TestRenderFormats(t *testing.T) {
	v := map[string]any{"id": "r-001", "status": "published"}
	table := func(w io.Writer) {
		row(w, "ID", "STATUS")
		row(w, "r-001", "published")
	}

	tests := []struct {
		format string
		want   string
	}{
		{outputJSON, "{\n  \"id\": \"r-001\",\n  \"status\": \"published\"\n}\n"},
		{outputYAML, "id: r-001\nstatus: published\n"},
		{outputTable, "ID     STATUS\nr-001  published\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			cmd, buf := commandWithOutput(tt.format)
			require.NoError(t, render(cmd, v, table))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	cmd, _ := commandWithOutput("xml")
	assert.Error(t, render(cmd, nil, func(io.Writer) {}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestCLINotifierRemembersShownErrors(t *testing.T) {
	var buf bytes.Buffer
	n := newCLINotifier(&buf)
	shown := apperr.New(apperr.KindBusiness, "404", "result not found")
	n.Notify(shown)

	assert.Equal(t, "error: result not found\n", buf.String())
	assert.True(t, n.shown(shown))
	assert.False(t, n.shown(apperr.New(apperr.KindBusiness, "404", "other")))
	assert.False(t, n.shown(errors.New("plain")))
}

func TestVersionRendersBuildInfo(t *testing.T) {
	cmd, buf := commandWithOutput(outputJSON)
	require.NoError(t, versionCmd.RunE(cmd, nil))

	var got buildInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, version, got.Version)
	assert.Equal(t, goruntime.Version(), got.Go)
	assert.Equal(t, goruntime.GOOS+"/"+goruntime.GOARCH, got.Target)
}
