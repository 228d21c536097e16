// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the zerolog logger every component receives.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-admin/pkg/types"
)

// Configure returns a logger writing to w. Level defaults to info; the
// "disabled" level discards all output. Format "console" renders
// human-readable lines, anything else JSON.
func Configure(cfg types.LoggingConfig, w io.Writer) zerolog.Logger {
	name := strings.ToLower(strings.TrimSpace(cfg.Level))
	if name == "disabled" {
		return zerolog.New(io.Discard).Level(zerolog.Disabled)
	}

	level, err := zerolog.ParseLevel(name)
	if err != nil || name == "" {
		level = zerolog.InfoLevel
	}

	out := w
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger()
}
