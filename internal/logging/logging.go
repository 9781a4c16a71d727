// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the zerolog logger handed to the engine.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Setup returns a logger writing to w.
//   - level: debug, info, warn, error (unknown values fall back to info)
//   - format: "json" for machine output, "pretty" for a human-readable console
//
// The level is set on the returned logger only, so building a logger has no
// process-wide effect.
func Setup(level, format string, w io.Writer) zerolog.Logger {
	var writer io.Writer = w
	if format == "pretty" {
		writer = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(writer).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// Verbosity maps a repeated -v count onto a level name: 0 keeps base,
// anything else is debug.
func Verbosity(base string, count int) string {
	if count > 0 {
		return zerolog.DebugLevel.String()
	}
	return base
}
