// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"strconv"
	"strings"
)

// coerce converts a raw value to the Go representation of typ:
// bool, string, Password, int32, float64 or []string.
func coerce(name string, typ Type, value any) (any, error) {
	if s, ok := value.(string); ok {
		return coerceString(name, typ, strings.TrimSpace(s))
	}

	switch typ {
	case TypeBoolean:
		if b, ok := value.(bool); ok {
			return b, nil
		}
	case TypePassword:
		if p, ok := value.(Password); ok {
			return p, nil
		}
	case TypeInt:
		if i, ok := toInt32(value); ok {
			return i, nil
		}
	case TypeDouble:
		if f, ok := toFloat64(value); ok {
			return f, nil
		}
	case TypeList:
		switch v := value.(type) {
		case []string:
			return v, nil
		case []any:
			return toStringSlice(name, v)
		}
	case TypeString:
	default:
		return nil, fmt.Errorf("%w: key %s has unknown type %d", ErrConfiguration, name, typ)
	}
	return nil, mismatch(name, typ, value, nil)
}

func coerceString(name string, typ Type, trimmed string) (any, error) {
	switch typ {
	case TypeBoolean:
		switch {
		case strings.EqualFold(trimmed, "true"):
			return true, nil
		case strings.EqualFold(trimmed, "false"):
			return false, nil
		}
		return nil, mismatch(name, typ, trimmed, nil)
	case TypePassword:
		return NewPassword(trimmed), nil
	case TypeString:
		return trimmed, nil
	case TypeInt:
		i, err := strconv.ParseInt(trimmed, 10, 32)
		if err != nil {
			return nil, mismatch(name, typ, trimmed, err)
		}
		return int32(i), nil
	case TypeDouble:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, mismatch(name, typ, trimmed, err)
		}
		return f, nil
	case TypeList:
		if trimmed == "" {
			return []string{}, nil
		}
		parts := strings.Split(trimmed, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	default:
		return nil, fmt.Errorf("%w: key %s has unknown type %d", ErrConfiguration, name, typ)
	}
}

func mismatch(name string, typ Type, value any, cause error) error {
	if typ == TypePassword {
		value = nil
	}
	return &Error{Kind: ErrTypeMismatch, Key: name, Expected: typ, Value: value, Err: cause}
}

func toInt32(value any) (int32, bool) {
	switch v := value.(type) {
	case int:
		return int32(v), true //nolint:gosec // truncation to 32 bits is the documented behaviour
	case int8:
		return int32(v), true
	case int16:
		return int32(v), true
	case int32:
		return v, true
	case int64:
		return int32(v), true //nolint:gosec // truncation to 32 bits is the documented behaviour
	case uint:
		return int32(v), true //nolint:gosec // truncation to 32 bits is the documented behaviour
	case uint8:
		return int32(v), true
	case uint16:
		return int32(v), true
	case uint32:
		return int32(v), true //nolint:gosec // truncation to 32 bits is the documented behaviour
	case uint64:
		return int32(v), true //nolint:gosec // truncation to 32 bits is the documented behaviour
	case float32:
		return int32(v), true
	case float64:
		return int32(v), true
	default:
		return 0, false
	}
}

func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	default:
		if i, ok := toInt64(value); ok {
			return float64(i), true
		}
		return 0, false
	}
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true //nolint:gosec // values beyond int64 are not expected in configuration
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true //nolint:gosec // values beyond int64 are not expected in configuration
	default:
		return 0, false
	}
}

func toStringSlice(name string, values []any) ([]string, error) {
	out := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, mismatch(name, TypeList, values, nil)
		}
		out = append(out, s)
	}
	return out, nil
}
