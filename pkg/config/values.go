// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

// Values maps every defined key name to its parsed value.
// Getters return the zero value when a key is unset or of another type.
type Values map[string]any

// String returns the STRING value of name.
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Password returns the PASSWORD value of name.
func (v Values) Password(name string) Password {
	p, _ := v[name].(Password)
	return p
}

// Bool returns the BOOLEAN value of name.
func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

// Int returns the INT value of name.
func (v Values) Int(name string) int32 {
	i, _ := v[name].(int32)
	return i
}

// Double returns the DOUBLE value of name.
func (v Values) Double(name string) float64 {
	f, _ := v[name].(float64)
	return f
}

// List returns the LIST value of name.
func (v Values) List(name string) []string {
	l, _ := v[name].([]string)
	return l
}
