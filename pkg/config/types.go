// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

// Type is the declared type of a configuration key.
type Type int

// Supported configuration types.
const (
	TypeBoolean Type = iota + 1
	TypeString
	TypePassword
	TypeInt
	TypeDouble
	TypeList
)

func (t Type) String() string {
	switch t {
	case TypeBoolean:
		return "BOOLEAN"
	case TypeString:
		return "STRING"
	case TypePassword:
		return "PASSWORD"
	case TypeInt:
		return "INT"
	case TypeDouble:
		return "DOUBLE"
	case TypeList:
		return "LIST"
	default:
		return "UNKNOWN"
	}
}

// Importance ranks a configuration key. A High key with no default must be supplied.
type Importance int

// Importance levels, highest first.
const (
	ImportanceHigh Importance = iota + 1
	ImportanceMedium
	ImportanceLow
)

func (i Importance) String() string {
	switch i {
	case ImportanceHigh:
		return "HIGH"
	case ImportanceMedium:
		return "MEDIUM"
	case ImportanceLow:
		return "LOW"
	default:
		return "UNKNOWN"
	}
}
