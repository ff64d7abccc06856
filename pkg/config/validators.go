// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	neturl "net/url"
	"slices"
	"strings"
)

// Error message templates for consistent error formatting
const (
	errEmptyValue       = "value must not be empty"
	errNotOneOf         = "value %q is not one of [%s]"
	errBelowMinimum     = "value %d is below the minimum %d"
	errInvalidURL       = "invalid URL format: %w"
	errRelativeURL      = "URL %q must be absolute"
	errUnexpectedType   = "unexpected value type %T"
	errUnsupportedProto = "URL scheme must be http or https, got %q"
)

// NonEmptyString rejects empty STRING or PASSWORD values.
func NonEmptyString() Validator {
	return func(_ string, value any) (any, error) {
		switch v := value.(type) {
		case string:
			if v == "" {
				return nil, errors.New(errEmptyValue)
			}
		case Password:
			if v.IsEmpty() {
				return nil, errors.New(errEmptyValue)
			}
		default:
			return nil, fmt.Errorf(errUnexpectedType, value)
		}
		return value, nil
	}
}

// OneOf accepts a STRING value matching one of allowed, ignoring case, and
// normalises it to the allowed spelling.
func OneOf(allowed ...string) Validator {
	return func(_ string, value any) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf(errUnexpectedType, value)
		}
		idx := slices.IndexFunc(allowed, func(a string) bool { return strings.EqualFold(a, s) })
		if idx < 0 {
			return nil, fmt.Errorf(errNotOneOf, s, strings.Join(allowed, ", "))
		}
		return allowed[idx], nil
	}
}

// AtLeast rejects INT values below minimum.
func AtLeast(minimum int32) Validator {
	return func(_ string, value any) (any, error) {
		i, ok := value.(int32)
		if !ok {
			return nil, fmt.Errorf(errUnexpectedType, value)
		}
		if i < minimum {
			return nil, fmt.Errorf(errBelowMinimum, i, minimum)
		}
		return i, nil
	}
}

// AbsoluteURL accepts an absolute http(s) URL. When allowEmpty is set the empty
// string is accepted as "not configured".
func AbsoluteURL(allowEmpty bool) Validator {
	return func(_ string, value any) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf(errUnexpectedType, value)
		}
		if s == "" && allowEmpty {
			return s, nil
		}
		u, err := neturl.Parse(s)
		if err != nil {
			return nil, fmt.Errorf(errInvalidURL, err)
		}
		if !u.IsAbs() || u.Host == "" {
			return nil, fmt.Errorf(errRelativeURL, s)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf(errUnsupportedProto, u.Scheme)
		}
		return s, nil
	}
}
