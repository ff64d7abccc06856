// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration is the root of every error produced by this package.
	ErrConfiguration = errors.New("configuration error")

	// ErrDuplicateKey is returned when a key name is defined twice.
	ErrDuplicateKey = fmt.Errorf("%w: duplicate key", ErrConfiguration)

	// ErrUndefinedKey is returned when looking up a key that was never defined.
	ErrUndefinedKey = fmt.Errorf("%w: undefined key", ErrConfiguration)

	// ErrMissingRequired is returned when HIGH importance keys without a default are absent.
	ErrMissingRequired = fmt.Errorf("%w: missing required keys", ErrConfiguration)

	// ErrTypeMismatch is returned when a value cannot be coerced to the declared type.
	ErrTypeMismatch = fmt.Errorf("%w: type mismatch", ErrConfiguration)

	// ErrValidationFailed is returned when a key validator rejects a value.
	ErrValidationFailed = fmt.Errorf("%w: validation failed", ErrConfiguration)

	// ErrDefinitionFrozen is returned when defining keys after a successful parse.
	ErrDefinitionFrozen = fmt.Errorf("%w: definition is frozen", ErrConfiguration)
)

// Error carries the kind of a configuration failure together with the keys involved.
type Error struct {
	// Kind is one of the sentinel errors above.
	Kind error
	// Key is the name of the offending key, when a single key is involved.
	Key string
	// Keys lists every missing key of an ErrMissingRequired error, in definition order.
	Keys []string
	// Expected is the declared type on a type mismatch.
	Expected Type
	// Value is the raw value that failed coercion. Never set for PASSWORD keys.
	Value any
	// Err is the underlying cause, such as a validator error.
	Err error
}

func (e *Error) Error() string {
	switch {
	case errors.Is(e.Kind, ErrMissingRequired):
		return fmt.Sprintf("%v: %s", e.Kind, strings.Join(e.Keys, ", "))
	case errors.Is(e.Kind, ErrTypeMismatch):
		msg := fmt.Sprintf("%v: key %s expects %s, got %T", e.Kind, e.Key, e.Expected, e.Value)
		if e.Expected != TypePassword && e.Value != nil {
			msg += fmt.Sprintf(" (%v)", e.Value)
		}
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
		return msg
	case e.Err != nil:
		return fmt.Sprintf("%v: key %s: %v", e.Kind, e.Key, e.Err)
	default:
		return fmt.Sprintf("%v: key %s", e.Kind, e.Key)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsMissingRequired checks if the error reports missing required keys
func IsMissingRequired(err error) bool {
	return errors.Is(err, ErrMissingRequired)
}

// IsTypeMismatch checks if the error is a type coercion failure
func IsTypeMismatch(err error) bool {
	return errors.Is(err, ErrTypeMismatch)
}

// MissingKeys returns the keys named by an ErrMissingRequired error, or nil.
func MissingKeys(err error) []string {
	var cfgErr *Error
	if errors.As(err, &cfgErr) && errors.Is(cfgErr.Kind, ErrMissingRequired) {
		return cfgErr.Keys
	}
	return nil
}
