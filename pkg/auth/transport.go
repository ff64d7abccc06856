// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"fmt"
	"net/http"
	neturl "net/url"
	"strings"
)

// Interceptor is invoked once before every outbound request.
type Interceptor interface {
	// BeforeSend returns the request to send, or an error if it must not be sent.
	BeforeSend(req *http.Request, scope Scope) (*http.Request, error)
}

// Authenticator is the Interceptor that sets the Authorization header from a Strategy.
// Requests to the scope's identity endpoint pass through untouched.
type Authenticator struct {
	strategy Strategy
}

// NewAuthenticator creates an interceptor using strategy.
func NewAuthenticator(strategy Strategy) *Authenticator {
	return &Authenticator{strategy: strategy}
}

// Strategy returns the strategy in use.
func (a *Authenticator) Strategy() Strategy {
	return a.strategy
}

// BeforeSend clones req and sets its Authorization header. The original
// request is not modified.
func (a *Authenticator) BeforeSend(req *http.Request, scope Scope) (*http.Request, error) {
	if IsIdentityEndpoint(req.URL, scope.AuthURL) {
		return req, nil
	}

	value, err := a.strategy.HeaderValue(req.Context(), scope)
	if err != nil {
		return nil, err
	}

	clonedReq := req.Clone(req.Context())
	clonedReq.Header.Set("Authorization", value)
	return clonedReq, nil
}

// IsIdentityEndpoint reports whether u addresses authURL (same scheme, host and path).
func IsIdentityEndpoint(u *neturl.URL, authURL string) bool {
	if u == nil || authURL == "" {
		return false
	}
	target, err := neturl.Parse(authURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, target.Scheme) &&
		strings.EqualFold(u.Host, target.Host) &&
		strings.TrimSuffix(u.Path, "/") == strings.TrimSuffix(target.Path, "/")
}

// Transport wraps an http.RoundTripper and runs an Interceptor on every request.
type Transport struct {
	Base        http.RoundTripper
	Interceptor Interceptor
	Scope       Scope
}

// RoundTrip authenticates the request and forwards it. If authentication
// fails the request is not sent.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Interceptor == nil {
		return t.base().RoundTrip(req)
	}

	authedReq, err := t.Interceptor.BeforeSend(req, t.Scope)
	if err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, fmt.Errorf("failed to authenticate request: %w", err)
	}

	return t.base().RoundTrip(authedReq)
}

// base returns the base RoundTripper, defaulting to http.DefaultTransport.
func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// WrapTransport wraps base so every request passes through interceptor.
// If interceptor is nil, returns the base transport unchanged.
func WrapTransport(base http.RoundTripper, interceptor Interceptor, scope Scope) http.RoundTripper {
	if interceptor == nil {
		return base
	}
	return &Transport{
		Base:        base,
		Interceptor: interceptor,
		Scope:       scope,
	}
}
