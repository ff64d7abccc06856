// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/magiconair/properties"
	"github.com/spf13/viper"
)

// LoadOptions controls where LoadProperties reads raw values from.
type LoadOptions struct {
	// Path to a YAML, JSON, TOML or .properties file. Optional.
	Path string
	// EnvPrefix is prepended to environment variable names. Optional.
	// With an empty prefix "openworld.client.key" is read from OPENWORLD_CLIENT_KEY.
	EnvPrefix string
}

// LoadProperties collects raw values for the keys of def from a file and the
// environment. Environment variables take precedence over the file. Only keys
// that are set somewhere appear in the result, so defaults and the
// missing-required check stay with Definition.Parse.
func LoadProperties(def *Definition, opts LoadOptions) (map[string]any, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	if opts.EnvPrefix != "" {
		v.SetEnvPrefix(opts.EnvPrefix)
	}
	v.AutomaticEnv()

	switch {
	case opts.Path == "":
	case strings.EqualFold(filepath.Ext(opts.Path), ".properties"):
		if err := readPropertiesFile(v, opts.Path); err != nil {
			return nil, err
		}
	default:
		v.SetConfigFile(opts.Path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read configuration file %s: %w", opts.Path, err)
		}
	}

	raw := make(map[string]any)
	for _, name := range def.Names() {
		if v.IsSet(name) {
			raw[name] = v.Get(name)
		}
	}
	return raw, nil
}

// readPropertiesFile loads a Java-style properties file. Viper no longer
// decodes this format, so entries are registered as viper defaults, which keeps
// the environment above the file.
func readPropertiesFile(v *viper.Viper, path string) error {
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}
	for _, key := range p.Keys() {
		value, _ := p.Get(key)
		v.SetDefault(key, value)
	}
	return nil
}
