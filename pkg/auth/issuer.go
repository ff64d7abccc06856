// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"k8s.io/utils/clock"
)

//go:generate mockgen -destination=mocks/mock_issuer.go -package=mocks -source=issuer.go TokenIssuer

// TokenIssuer obtains a new token for a scope from its identity endpoint.
type TokenIssuer interface {
	Issue(ctx context.Context, scope Scope) (*Token, error)
}

// rejectionCodes are the RFC 6749 error codes meaning the client credentials are wrong.
var rejectionCodes = []string{"invalid_client", "unauthorized_client", "invalid_grant"}

// ClientCredentialsIssuer issues tokens with the OAuth2 client credentials grant.
// The key and secret travel as HTTP basic auth on a POST to the scope's AuthURL.
type ClientCredentialsIssuer struct {
	httpClient *http.Client
	scopes     []string
	clock      clock.PassiveClock
}

// IssuerOption configures a ClientCredentialsIssuer.
type IssuerOption func(*ClientCredentialsIssuer)

// WithIssuerHTTPClient sets the HTTP client used to reach the identity endpoint.
// It must not be a client that authenticates through this package.
func WithIssuerHTTPClient(client *http.Client) IssuerOption {
	return func(i *ClientCredentialsIssuer) {
		i.httpClient = client
	}
}

// WithRequestedScopes sets the OAuth2 scopes requested with each token.
func WithRequestedScopes(scopes ...string) IssuerOption {
	return func(i *ClientCredentialsIssuer) {
		i.scopes = slices.Clone(scopes)
	}
}

// WithIssuerClock sets the clock used to compute token expiry.
func WithIssuerClock(c clock.PassiveClock) IssuerOption {
	return func(i *ClientCredentialsIssuer) {
		i.clock = c
	}
}

// NewClientCredentialsIssuer creates an issuer with the given options.
func NewClientCredentialsIssuer(opts ...IssuerOption) *ClientCredentialsIssuer {
	i := &ClientCredentialsIssuer{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		clock:      clock.RealClock{},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue exchanges the scope's credentials for an access token.
func (i *ClientCredentialsIssuer) Issue(ctx context.Context, scope Scope) (*Token, error) {
	if scope.AuthURL == "" {
		return nil, &Error{Kind: ErrRenewalFailed, Scope: scope.ID(), Err: ErrMissingAuthURL}
	}

	cfg := clientcredentials.Config{
		ClientID:     scope.Credentials.Key(),
		ClientSecret: scope.Credentials.Secret(),
		TokenURL:     scope.AuthURL,
		Scopes:       i.scopes,
		// Auto-detection retries with the other style after a failure, which
		// would turn one rejected renewal into two requests.
		AuthStyle: oauth2.AuthStyleInHeader,
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, i.httpClient)
	tok, err := cfg.Token(ctx)
	if err != nil {
		return nil, classifyIssueError(scope, err)
	}

	expiresIn, ok := expiresInSeconds(tok)
	if !ok {
		return nil, &Error{
			Kind:  ErrRenewalFailed,
			Scope: scope.ID(),
			Err:   errors.New("token response is missing a positive expires_in"),
		}
	}

	descriptor, _ := tok.Extra("scope").(string)
	return &Token{
		Value:     tok.AccessToken,
		ExpiresAt: i.clock.Now().Add(time.Duration(expiresIn) * time.Second),
		Scope:     descriptor,
	}, nil
}

// expiresInSeconds reads expires_in from the raw token response.
// clientcredentials only converts it into Token.Expiry against the wall clock
// and leaves Token.ExpiresIn unset.
func expiresInSeconds(tok *oauth2.Token) (int64, bool) {
	var seconds int64
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		seconds = int64(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		seconds = n
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		seconds = n
	default:
		seconds = tok.ExpiresIn
	}
	return seconds, seconds > 0
}

func classifyIssueError(scope Scope, err error) error {
	kind := ErrRenewalFailed

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		if status == http.StatusUnauthorized || status == http.StatusForbidden ||
			slices.Contains(rejectionCodes, retrieveErr.ErrorCode) {
			kind = ErrCredentialRejected
		}
	}

	return &Error{Kind: kind, Scope: scope.ID(), Err: err}
}
