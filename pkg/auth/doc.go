// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package auth attaches credentials to outbound HTTP requests.
//
// It handles:
//   - expiry detection for cached bearer tokens and request signatures
//   - single-flight token renewal per credential scope
//   - pluggable strategies producing the Authorization header value
//     (Bearer tokens from an identity endpoint, locally computed EAN signatures)
//   - a pre-send interceptor and an http.RoundTripper that runs it
//
// A scope is the identity a credential is cached under: client key, secret
// and identity endpoint URL. Concurrent requests for the same stale scope
// trigger exactly one call to the identity endpoint and share its outcome.
// Renewal is proactive only; a 401 response does not trigger a retry.
package auth
