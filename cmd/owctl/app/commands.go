// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app provides the commands of the owctl command-line application.
package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/expediagroup/openworld-sdk-go/pkg/config"
	"github.com/expediagroup/openworld-sdk-go/pkg/logger"
	"github.com/expediagroup/openworld-sdk-go/pkg/sdk"
	"github.com/expediagroup/openworld-sdk-go/pkg/telemetry"
)

// Output formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

const (
	flagConfig       = "config"
	flagEnvPrefix    = "env-prefix"
	flagMetrics      = "metrics"
	flagOTLPEndpoint = "otlp-endpoint"
	flagOTLPInsecure = "otlp-insecure"
)

// NewRootCmd creates the root command for the owctl CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "owctl",
		DisableAutoGenTag: true,
		Short:             "owctl sends authenticated requests to the Open World API",
		Long: `owctl sends authenticated requests to the Open World API.

Configuration keys such as openworld.client.key are read from the file given
with --config and from environment variables. The variable name is the key
upper-cased with dots replaced by underscores, for example OPENWORLD_CLIENT_KEY,
optionally preceded by --env-prefix and an underscore.`,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				logger.Get().Error("error displaying help", "error", err)
			}
		},
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.Initialize()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		logger.Get().Error("error binding debug flag", "error", err)
	}
	rootCmd.PersistentFlags().StringP(flagConfig, "c", "", "Path to a YAML, JSON, TOML or .properties configuration file")
	rootCmd.PersistentFlags().String(flagEnvPrefix, "", "Prefix of the environment variables holding configuration keys")
	rootCmd.PersistentFlags().Bool(flagMetrics, false, "Print token renewal metrics in Prometheus format to stderr on exit")
	rootCmd.PersistentFlags().String(flagOTLPEndpoint, "", "OTLP collector endpoint (host:port) for renewal traces and metrics")
	rootCmd.PersistentFlags().Bool(flagOTLPInsecure, false, "Disable TLS for the OTLP endpoint")

	rootCmd.AddCommand(newKeysCmd())
	rootCmd.AddCommand(newHeaderCmd())
	rootCmd.AddCommand(newGetCmd())

	return rootCmd
}

// loadClient builds an SDK client from the configuration sources named by the
// flags. The returned func flushes telemetry and must be called when the
// command is done with the client.
func loadClient(cmd *cobra.Command) (*sdk.Client, func(), error) {
	flags := cmd.Flags()
	path, err := flags.GetString(flagConfig)
	if err != nil {
		return nil, nil, err
	}
	prefix, err := flags.GetString(flagEnvPrefix)
	if err != nil {
		return nil, nil, err
	}

	def, err := sdk.NewDefinition()
	if err != nil {
		return nil, nil, err
	}
	raw, err := config.LoadProperties(def, config.LoadOptions{Path: path, EnvPrefix: prefix})
	if err != nil {
		return nil, nil, err
	}

	providers, err := newProviders(cmd)
	if err != nil {
		return nil, nil, err
	}
	done := func() {
		if printMetrics, _ := flags.GetBool(flagMetrics); printMetrics {
			if err := providers.WritePrometheus(cmd.ErrOrStderr()); err != nil {
				logger.Get().Warn("failed to print metrics", "error", err)
			}
		}
		if err := providers.Shutdown(context.WithoutCancel(cmd.Context())); err != nil {
			logger.Get().Warn("failed to shut down telemetry", "error", err)
		}
	}

	client, err := sdk.NewClient(raw,
		sdk.WithLogger(logger.For("owctl")),
		sdk.WithMeterProvider(providers.MeterProvider()),
		sdk.WithTracerProvider(providers.TracerProvider()),
	)
	if err != nil {
		done()
		return nil, nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, done, nil
}

func newProviders(cmd *cobra.Command) (*telemetry.Providers, error) {
	flags := cmd.Flags()
	printMetrics, err := flags.GetBool(flagMetrics)
	if err != nil {
		return nil, err
	}
	endpoint, err := flags.GetString(flagOTLPEndpoint)
	if err != nil {
		return nil, err
	}
	insecure, err := flags.GetBool(flagOTLPInsecure)
	if err != nil {
		return nil, err
	}

	providers, err := telemetry.New(cmd.Context(),
		telemetry.WithServiceName("owctl"),
		telemetry.WithPrometheus(printMetrics),
		telemetry.WithOTLPEndpoint(endpoint),
		telemetry.WithInsecure(insecure),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry providers: %w", err)
	}
	return providers, nil
}
