// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package sdk assembles an authenticated Open World API client from named
// configuration values.
package sdk

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	neturl "net/url"
	"strings"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/utils/clock"

	"github.com/expediagroup/openworld-sdk-go/pkg/auth"
	"github.com/expediagroup/openworld-sdk-go/pkg/logger"
)

// Client sends requests to the configured endpoint with an Authorization
// header set on every request.
type Client struct {
	settings   *Settings
	scope      auth.Scope
	strategy   auth.Strategy
	httpClient *http.Client
	baseURL    *neturl.URL
	logger     *slog.Logger
}

type clientOptions struct {
	httpClient     *http.Client
	issuer         auth.TokenIssuer
	signer         auth.Signer
	clock          clock.PassiveClock
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	logger         *slog.Logger
}

// Option configures NewClient.
type Option func(*clientOptions)

// WithHTTPClient sets the client whose transport carries both API and token
// requests. Its transport is wrapped, not modified.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}

// WithTokenIssuer replaces the OAuth2 client credentials issuer.
func WithTokenIssuer(issuer auth.TokenIssuer) Option {
	return func(o *clientOptions) {
		o.issuer = issuer
	}
}

// WithSigner replaces the EAN signer used by signature authentication.
func WithSigner(signer auth.Signer) Option {
	return func(o *clientOptions) {
		o.signer = signer
	}
}

// WithClock sets the clock used for token and signature expiry.
func WithClock(c clock.PassiveClock) Option {
	return func(o *clientOptions) {
		o.clock = c
	}
}

// WithMeterProvider sets the meter provider for renewal metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *clientOptions) {
		o.meterProvider = mp
	}
}

// WithTracerProvider sets the tracer provider for renewal spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *clientOptions) {
		o.tracerProvider = tp
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = l
	}
}

// NewClient parses raw, selects the authentication strategy and builds the
// client. Any configuration error is returned here; a returned client is
// fully initialised.
func NewClient(raw map[string]any, opts ...Option) (*Client, error) {
	settings, err := ParseSettings(raw)
	if err != nil {
		return nil, err
	}

	o := &clientOptions{clock: clock.RealClock{}}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logger.For("sdk")
	}

	baseURL, err := neturl.Parse(strings.TrimSuffix(settings.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", settings.Endpoint, err)
	}

	base := http.DefaultClient
	if o.httpClient != nil {
		base = o.httpClient
	}

	scope := auth.NewScope(auth.NewCredentials(settings.ClientKey, settings.ClientSecret.Value()), settings.AuthURL)

	strategy, err := newStrategy(settings, o, base)
	if err != nil {
		return nil, err
	}

	httpClient := *base
	httpClient.Transport = auth.WrapTransport(base.Transport, auth.NewAuthenticator(strategy), scope)
	httpClient.Timeout = settings.RequestTimeout()

	o.logger.Debug("client configured",
		"endpoint", settings.Endpoint,
		"auth_method", strategy.Name(),
		"scope", scope.ID(),
	)

	return &Client{
		settings:   settings,
		scope:      scope,
		strategy:   strategy,
		httpClient: &httpClient,
		baseURL:    baseURL,
		logger:     o.logger,
	}, nil
}

// newStrategy builds the strategy named by the settings. Token requests go
// through base, never through the authenticating transport.
func newStrategy(settings *Settings, o *clientOptions, base *http.Client) (auth.Strategy, error) {
	switch settings.AuthMethod {
	case MethodSignature:
		signatureOpts := []auth.SignatureOption{
			auth.WithSignatureClock(o.clock),
			auth.WithSignatureValidity(settings.SignatureValidity()),
			auth.WithSignatureLeadWindow(settings.SignatureLeadWindow()),
		}
		if o.signer != nil {
			signatureOpts = append(signatureOpts, auth.WithSigner(o.signer))
		}
		return auth.NewSignatureStrategy(signatureOpts...), nil

	case MethodBearer:
		issuer := o.issuer
		if issuer == nil {
			issuerClient := *base
			issuerClient.Timeout = settings.RequestTimeout()
			issuer = auth.NewClientCredentialsIssuer(
				auth.WithIssuerHTTPClient(&issuerClient),
				auth.WithRequestedScopes(settings.AuthScopes...),
				auth.WithIssuerClock(o.clock),
			)
		}

		coordinatorOpts := []auth.CoordinatorOption{
			auth.WithClock(o.clock),
			auth.WithLeadWindow(settings.BearerLeadWindow()),
			auth.WithRenewTimeout(settings.RequestTimeout()),
			auth.WithLogger(o.logger),
		}
		if o.meterProvider != nil {
			coordinatorOpts = append(coordinatorOpts, auth.WithMeterProvider(o.meterProvider))
		}
		if o.tracerProvider != nil {
			coordinatorOpts = append(coordinatorOpts, auth.WithTracerProvider(o.tracerProvider))
		}

		coordinator, err := auth.NewCoordinator(issuer, coordinatorOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create token coordinator: %w", err)
		}
		return auth.NewBearerStrategy(coordinator), nil

	default:
		return nil, fmt.Errorf("unsupported authentication method %q", settings.AuthMethod)
	}
}

// Settings returns the parsed configuration.
func (c *Client) Settings() Settings {
	return *c.settings
}

// Strategy returns the authentication strategy in use.
func (c *Client) Strategy() auth.Strategy {
	return c.strategy
}

// HTTPClient returns the authenticating HTTP client.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// NewRequest builds a request for path relative to the configured endpoint.
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	ref, err := neturl.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid request path %q: %w", path, err)
	}
	if ref.IsAbs() {
		return nil, fmt.Errorf("request path %q must be relative to the endpoint", path)
	}

	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimPrefix(ref.Path, "/")
	u.RawQuery = ref.RawQuery

	return http.NewRequestWithContext(ctx, method, u.String(), body)
}

// Do sends req with authentication.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// AuthorizationHeader returns the Authorization header value the next
// request would carry.
func (c *Client) AuthorizationHeader(ctx context.Context) (string, error) {
	return c.strategy.HeaderValue(ctx, c.scope)
}
