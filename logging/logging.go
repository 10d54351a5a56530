// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/stacklok/bender/env"
)

const (
	// LevelEnvVar names the environment variable read by FromEnv for the log level.
	LevelEnvVar = "BENDER_LOG_LEVEL"
	// FormatEnvVar names the environment variable read by FromEnv for the log format.
	FormatEnvVar = "BENDER_LOG_FORMAT"
)

// Format represents the log output format.
type Format int

const (
	// FormatJSON produces JSON-formatted log output using [log/slog.JSONHandler].
	// This is the default format.
	FormatJSON Format = iota

	// FormatText produces human-readable text output using [log/slog.TextHandler].
	FormatText
)

// String returns the name ParseFormat accepts for f.
func (f Format) String() string {
	if f == FormatText {
		return "text"
	}
	return "json"
}

// ParseFormat parses "json" or "text", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "text":
		return FormatText, nil
	}
	return FormatJSON, fmt.Errorf("unknown log format %q", s)
}

// ParseLevel parses a level name ("debug", "info", "warn", "error"),
// case-insensitively, using [log/slog.Level.UnmarshalText].
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q: %w", s, err)
	}
	return lvl, nil
}

// config holds the resolved configuration for creating a logger.
type config struct {
	format Format
	level  slog.Leveler
	output io.Writer
}

// Option configures the logger created by [New].
type Option func(*config)

// WithFormat sets the output format (JSON or Text).
// The default is [FormatJSON].
func WithFormat(f Format) Option {
	return func(c *config) {
		c.format = f
	}
}

// WithLevel sets the minimum log level.
// The default is [log/slog.LevelInfo].
//
// Accepts any [log/slog.Leveler], including [*log/slog.LevelVar] for
// dynamic level changes:
//
//	var lvl slog.LevelVar
//	lvl.Set(slog.LevelDebug)
//	logger := logging.New(logging.WithLevel(&lvl))
func WithLevel(l slog.Leveler) Option {
	return func(c *config) {
		c.level = l
	}
}

// WithOutput sets the destination writer for log output.
// The default is [os.Stderr].
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		c.output = w
	}
}

// FromEnv returns the options described by BENDER_LOG_LEVEL and
// BENDER_LOG_FORMAT. Unset or unrecognised values contribute no option, so
// the defaults apply.
//
//	logger := logging.New(logging.FromEnv(&env.OSReader{})...)
func FromEnv(reader env.Reader) []Option {
	var opts []Option
	if v := reader.Getenv(LevelEnvVar); v != "" {
		if lvl, err := ParseLevel(v); err == nil {
			opts = append(opts, WithLevel(lvl))
		}
	}
	if v := reader.Getenv(FormatEnvVar); v != "" {
		if f, err := ParseFormat(v); err == nil {
			opts = append(opts, WithFormat(f))
		}
	}
	return opts
}

// New creates a pre-configured [*log/slog.Logger].
//
// Defaults:
//   - Format: JSON ([FormatJSON])
//   - Level: INFO ([log/slog.LevelInfo])
//   - Output: [os.Stderr]
//   - Timestamps: [time.RFC3339]
func New(opts ...Option) *slog.Logger {
	return slog.New(NewHandler(opts...))
}

// NewHandler creates the [log/slog.Handler] behind [New], for callers that
// wrap it.
func NewHandler(opts ...Option) slog.Handler {
	cfg := &config{
		format: FormatJSON,
		level:  slog.LevelInfo,
		output: os.Stderr,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:       cfg.level,
		ReplaceAttr: replaceAttr,
	}

	if cfg.format == FormatText {
		return slog.NewTextHandler(cfg.output, handlerOpts)
	}
	return slog.NewJSONHandler(cfg.output, handlerOpts)
}

// replaceAttr formats the time attribute to RFC3339.
// All other attributes are passed through unchanged.
func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.Format(time.RFC3339))
		}
	}
	return a
}
