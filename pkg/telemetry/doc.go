// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package telemetry builds the OpenTelemetry meter and tracer providers handed
// to the SDK client: OTLP export over HTTP and an in-process Prometheus registry.
package telemetry
