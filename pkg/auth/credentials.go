// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
)

// Credentials is an immutable client key and secret pair.
// Its textual forms never include the secret.
type Credentials struct {
	key    string
	secret string
}

// NewCredentials creates a credential pair.
func NewCredentials(key, secret string) Credentials {
	return Credentials{key: key, secret: secret}
}

// Key returns the client key.
func (c Credentials) Key() string {
	return c.key
}

// Secret returns the client secret in clear.
func (c Credentials) Secret() string {
	return c.secret
}

func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{key=%s, secret=[hidden]}", c.key)
}

// LogValue renders the credentials for slog without the secret.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("key", c.key),
		slog.String("secret", "[hidden]"),
	)
}

// Scope identifies the cache entry a credential lives under: the same key and
// secret against two identity endpoints are two scopes.
type Scope struct {
	Credentials Credentials
	// AuthURL is the identity endpoint. Empty for signature authentication.
	AuthURL string
}

// NewScope builds a scope.
func NewScope(creds Credentials, authURL string) Scope {
	return Scope{Credentials: creds, AuthURL: authURL}
}

// ID returns a stable identifier for the scope that is safe to log.
func (s Scope) ID() string {
	h := sha256.New()
	// Lengths are written to keep ("ab","c") and ("a","bc") apart.
	for _, part := range []string{s.Credentials.key, s.Credentials.secret, s.AuthURL} {
		_, _ = fmt.Fprintf(h, "%d:%s;", len(part), part)
	}
	return hex.EncodeToString(h.Sum(nil)[:12])
}
