// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"errors"
	"fmt"
)

// Sentinel errors for request authentication.
var (
	// ErrAuthentication is the root of every error produced while credentialing a request.
	ErrAuthentication = errors.New("authentication failed")

	// ErrRenewalFailed is returned when a token could not be obtained from the identity endpoint.
	ErrRenewalFailed = fmt.Errorf("%w: token renewal failed", ErrAuthentication)

	// ErrCredentialRejected is returned when the identity endpoint rejects the key and secret.
	// It is also an ErrRenewalFailed.
	ErrCredentialRejected = fmt.Errorf("%w: credentials rejected", ErrRenewalFailed)

	// ErrSignatureFailed is returned when the request signature cannot be computed.
	ErrSignatureFailed = fmt.Errorf("%w: signature computation failed", ErrAuthentication)

	// ErrRenewalAbandoned is returned to a caller whose context ended while it
	// waited for a renewal. The renewal itself keeps running.
	ErrRenewalAbandoned = fmt.Errorf("%w: stopped waiting for token renewal", ErrAuthentication)

	// ErrNilIssuer is returned when a coordinator is built without a token issuer.
	ErrNilIssuer = errors.New("token issuer cannot be nil")

	// ErrMissingAuthURL is returned when a bearer scope has no identity endpoint.
	ErrMissingAuthURL = errors.New("auth URL is required for bearer authentication")
)

// Error wraps an authentication failure with the scope it happened in.
type Error struct {
	// Kind is one of the sentinel errors above.
	Kind error
	// Scope is the loggable scope ID, never the credentials themselves.
	Scope string
	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v (scope %s): %v", e.Kind, e.Scope, e.Err)
	}
	return fmt.Sprintf("%v (scope %s)", e.Kind, e.Scope)
}

// Unwrap exposes both the kind and the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsCredentialRejected checks if the identity endpoint refused the credentials
func IsCredentialRejected(err error) bool {
	return errors.Is(err, ErrCredentialRejected)
}

// IsRenewalFailed checks if the error came from a failed token renewal
func IsRenewalFailed(err error) bool {
	return errors.Is(err, ErrRenewalFailed)
}
