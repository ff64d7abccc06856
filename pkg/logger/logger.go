// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package logger holds the process-wide *slog.Logger used by the SDK when no
// logger is injected.
//
// Components accept a *slog.Logger and fall back to [Get]. Applications
// embedding the SDK call [Set] to route SDK logs into their own handler; the
// owctl CLI calls [Initialize].
package logger

import (
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/spf13/viper"

	"github.com/stacklok/toolhive-core/env"
	"github.com/stacklok/toolhive-core/logging"
)

// UnstructuredLogsEnv switches the logger to plain text output when true.
const UnstructuredLogsEnv = "UNSTRUCTURED_LOGS"

var singleton atomic.Pointer[slog.Logger]

func init() {
	singleton.Store(logging.New())
}

// Get returns the current logger.
func Get() *slog.Logger {
	return singleton.Load()
}

// Set replaces the logger. A nil logger is ignored.
func Set(l *slog.Logger) {
	if l == nil {
		return
	}
	singleton.Store(l)
}

// For returns the current logger tagged with a component name.
func For(component string) *slog.Logger {
	return Get().With("component", component)
}

// Initialize configures the logger from the process environment and viper.
func Initialize() {
	InitializeWithEnv(&env.OSReader{})
}

// InitializeWithEnv configures the logger: JSON output unless
// UNSTRUCTURED_LOGS is true, debug level when the viper "debug" key is set.
func InitializeWithEnv(envReader env.Reader) {
	var opts []logging.Option

	if unstructuredLogsWithEnv(envReader) {
		opts = append(opts, logging.WithFormat(logging.FormatText))
	}

	if viper.GetBool("debug") {
		opts = append(opts, logging.WithLevel(slog.LevelDebug))
	}

	singleton.Store(logging.New(opts...))
}

func unstructuredLogsWithEnv(envReader env.Reader) bool {
	unstructuredLogs, err := strconv.ParseBool(envReader.Getenv(UnstructuredLogsEnv))
	if err != nil {
		// unset or unparsable
		return false
	}
	return unstructuredLogs
}
