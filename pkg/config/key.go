// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

// Validator checks a parsed value and may return a normalised replacement.
// It receives the key name and a value already coerced to the key's type.
type Validator func(name string, value any) (any, error)

// Key describes a single named configuration value.
type Key struct {
	// Name is unique within a Definition. Dot-delimited namespaces are the convention.
	Name string
	// Documentation is a human readable description of the key.
	Documentation string
	// Type is the declared type values are coerced to.
	Type Type
	// Importance of the key; a High key without default is required.
	Importance Importance
	// Default is used when no raw value is supplied. Only meaningful if HasDefault is set.
	Default any
	// HasDefault distinguishes "no default" from a nil or zero default.
	HasDefault bool
	// Validator is optional.
	Validator Validator
}

// Required reports whether parsing fails when the key is absent.
func (k Key) Required() bool {
	return k.Importance == ImportanceHigh && !k.HasDefault
}

// KeyOption customises a Key built by Definition.Define.
type KeyOption func(*Key)

// WithDefault sets the default value of a key.
func WithDefault(value any) KeyOption {
	return func(k *Key) {
		k.Default = value
		k.HasDefault = true
	}
}

// WithValidator attaches a validator to a key.
func WithValidator(v Validator) KeyOption {
	return func(k *Key) {
		k.Validator = v
	}
}

// resolve coerces value to the key's type and runs the validator.
func (k Key) resolve(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	parsed, err := coerce(k.Name, k.Type, value)
	if err != nil {
		return nil, err
	}
	if k.Validator == nil {
		return parsed, nil
	}
	validated, err := k.Validator(k.Name, parsed)
	if err != nil {
		return nil, &Error{Kind: ErrValidationFailed, Key: k.Name, Err: err}
	}
	return validated, nil
}
