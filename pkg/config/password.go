// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"log/slog"
)

const hiddenValue = "[hidden]"

// Password holds a secret configuration value. Every textual rendering of it is
// masked; call Value to read the secret.
type Password struct {
	value string
}

// NewPassword wraps a secret value.
func NewPassword(value string) Password {
	return Password{value: value}
}

// Value returns the secret in clear.
func (p Password) Value() string {
	return p.value
}

// IsEmpty reports whether the secret is the empty string.
func (p Password) IsEmpty() bool {
	return p.value == ""
}

func (Password) String() string {
	return hiddenValue
}

// GoString masks the value for %#v.
func (Password) GoString() string {
	return hiddenValue
}

// LogValue masks the value for slog.
func (Password) LogValue() slog.Value {
	return slog.StringValue(hiddenValue)
}

// MarshalJSON masks the value when serialized.
func (Password) MarshalJSON() ([]byte, error) {
	return json.Marshal(hiddenValue)
}
