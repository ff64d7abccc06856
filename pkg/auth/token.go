// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"time"
)

// Token is a credential value with an expiry instant. A cached Token is
// replaced on renewal and never edited in place.
type Token struct {
	// Value is the access token, or the signature for signature authentication.
	Value string
	// ExpiresAt is when the value stops being accepted.
	ExpiresAt time.Time
	// Scope is the scope descriptor returned by the identity endpoint, if any.
	Scope string
}

// IsAboutToExpire returns true when the remaining lifetime of the token at now
// is at most leadWindow. A nil token is always about to expire.
func (t *Token) IsAboutToExpire(now time.Time, leadWindow time.Duration) bool {
	return IsAboutToExpire(t, now, leadWindow)
}

// IsAboutToExpire reports whether token needs renewal at now given leadWindow.
// It is the only trigger for renewing a credential.
func IsAboutToExpire(token *Token, now time.Time, leadWindow time.Duration) bool {
	if token == nil {
		return true
	}
	return token.ExpiresAt.Sub(now) <= leadWindow
}
