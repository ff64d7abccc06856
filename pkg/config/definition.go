// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config declares, validates and type-coerces named configuration values.
//
// A Definition is a set of Keys built once at startup. Parse resolves raw
// properties (strings from files or the environment, or native Go values)
// against it and freezes the definition.
package config

import (
	"errors"
	"fmt"
	"sync"
)

// Definition is an insertion-ordered set of configuration keys.
// It is safe for concurrent use.
type Definition struct {
	mu     sync.RWMutex
	keys   map[string]Key
	order  []string
	frozen bool
}

// NewDefinition returns an empty definition.
func NewDefinition() *Definition {
	return &Definition{keys: make(map[string]Key)}
}

// DefineKey registers key. A default value is coerced and validated here so a
// faulty definition is reported at startup rather than at parse time.
func (d *Definition) DefineKey(key Key) error {
	if key.Name == "" {
		return fmt.Errorf("%w: key name cannot be empty", ErrConfiguration)
	}
	if key.Type < TypeBoolean || key.Type > TypeList {
		return fmt.Errorf("%w: key %s has unknown type %d", ErrConfiguration, key.Name, key.Type)
	}
	if key.Importance < ImportanceHigh || key.Importance > ImportanceLow {
		return fmt.Errorf("%w: key %s has unknown importance %d", ErrConfiguration, key.Name, key.Importance)
	}
	if key.HasDefault {
		if _, err := key.resolve(key.Default); err != nil {
			return err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.frozen {
		return &Error{Kind: ErrDefinitionFrozen, Key: key.Name}
	}
	if _, exists := d.keys[key.Name]; exists {
		return &Error{Kind: ErrDuplicateKey, Key: key.Name}
	}
	d.keys[key.Name] = key
	d.order = append(d.order, key.Name)
	return nil
}

// Define builds a key from its parts and registers it.
func (d *Definition) Define(
	name, documentation string,
	typ Type,
	importance Importance,
	opts ...KeyOption,
) error {
	key := Key{
		Name:          name,
		Documentation: documentation,
		Type:          typ,
		Importance:    importance,
	}
	for _, opt := range opts {
		opt(&key)
	}
	return d.DefineKey(key)
}

// Get returns the key registered under name.
func (d *Definition) Get(name string) (Key, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	key, ok := d.keys[name]
	if !ok {
		return Key{}, &Error{Kind: ErrUndefinedKey, Key: name}
	}
	return key, nil
}

// Names returns the key names in definition order.
func (d *Definition) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, len(d.order))
	copy(names, d.order)
	return names
}

// Keys returns the keys in definition order.
func (d *Definition) Keys() []Key {
	d.mu.RLock()
	defer d.mu.RUnlock()

	keys := make([]Key, 0, len(d.order))
	for _, name := range d.order {
		keys = append(keys, d.keys[name])
	}
	return keys
}

// Parse resolves every defined key against raw and returns one value per key.
//
// Missing required keys are reported together in a single ErrMissingRequired
// error before any coercion happens. Keys in raw that are not defined are
// ignored. Optional keys without a default and without a raw value map to nil.
func (d *Definition) Parse(raw map[string]any) (Values, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var missing []string
	for _, name := range d.order {
		if !d.keys[name].Required() {
			continue
		}
		if _, ok := raw[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &Error{Kind: ErrMissingRequired, Keys: missing}
	}

	values := make(Values, len(d.order))
	var errs []error
	for _, name := range d.order {
		key := d.keys[name]
		value, ok := raw[name]
		if !ok {
			value = key.Default
		}
		parsed, err := key.resolve(value)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		values[name] = parsed
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	d.frozen = true
	return values, nil
}
