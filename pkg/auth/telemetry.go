// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/utils/clock"
)

const instrumentationName = "github.com/expediagroup/openworld-sdk-go/pkg/auth"

// Renewal result attribute values.
const (
	renewalResultSuccess  = "success"
	renewalResultRejected = "rejected"
	renewalResultFailure  = "failure"
)

var (
	attrScopeID       = attribute.Key("openworld.auth.scope_id")
	attrRenewalResult = attribute.Key("openworld.auth.renewal.result")
)

// renewalTelemetry records one span and one counter increment per renewal
// that actually reaches the token issuer.
type renewalTelemetry struct {
	tracer   trace.Tracer
	renewals metric.Int64Counter
	duration metric.Float64Histogram
	clock    clock.PassiveClock
}

func newRenewalTelemetry(
	meterProvider metric.MeterProvider,
	tracerProvider trace.TracerProvider,
	clk clock.PassiveClock,
) (*renewalTelemetry, error) {
	meter := meterProvider.Meter(instrumentationName)

	renewals, err := meter.Int64Counter(
		"openworld_auth_token_renewals",
		metric.WithDescription("Number of token renewals sent to the identity endpoint"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token renewals counter: %w", err)
	}
	duration, err := meter.Float64Histogram(
		"openworld_auth_token_renewal_duration",
		metric.WithDescription("Duration of token renewals in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token renewal duration histogram: %w", err)
	}

	return &renewalTelemetry{
		tracer:   tracerProvider.Tracer(instrumentationName),
		renewals: renewals,
		duration: duration,
		clock:    clk,
	}, nil
}

// start opens the renewal span. The returned func must be called with the
// renewal outcome.
func (t *renewalTelemetry) start(ctx context.Context, scopeID string) (context.Context, func(error)) {
	ctx, span := t.tracer.Start(ctx, "auth.RenewToken",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrScopeID.String(scopeID)),
	)
	start := t.clock.Now()

	return ctx, func(err error) {
		result := renewalResultSuccess
		switch {
		case errors.Is(err, ErrCredentialRejected):
			result = renewalResultRejected
		case err != nil:
			result = renewalResultFailure
		}

		attrs := metric.WithAttributes(attrRenewalResult.String(result))
		t.renewals.Add(ctx, 1, attrs)
		t.duration.Record(ctx, t.clock.Since(start).Seconds(), attrs)

		span.SetAttributes(attrRenewalResult.String(result))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
