// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package main is the entry point for owctl, a command-line client for the Open World API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/expediagroup/openworld-sdk-go/cmd/owctl/app"
	"github.com/expediagroup/openworld-sdk-go/pkg/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.NewRootCmd().ExecuteContext(ctx); err != nil {
		logger.Get().Error("command failed", "error", err)
		cancel()
		os.Exit(1)
	}
}
