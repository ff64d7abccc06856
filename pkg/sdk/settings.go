// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package sdk

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/expediagroup/openworld-sdk-go/pkg/config"
)

// Settings is the typed view of parsed client configuration.
type Settings struct {
	ClientKey                string          `mapstructure:"openworld.client.key"`
	ClientSecret             config.Password `mapstructure:"openworld.client.secret"`
	Endpoint                 string          `mapstructure:"openworld.endpoint"`
	AuthMethod               string          `mapstructure:"openworld.auth.method"`
	AuthURL                  string          `mapstructure:"openworld.auth.url"`
	AuthScopes               []string        `mapstructure:"openworld.auth.scopes"`
	BearerLeadSeconds        int             `mapstructure:"openworld.auth.bearer.lead.seconds"`
	SignatureValiditySeconds int             `mapstructure:"openworld.auth.signature.validity.seconds"`
	SignatureLeadMillis      int             `mapstructure:"openworld.auth.signature.lead.millis"`
	RequestTimeoutMillis     int             `mapstructure:"openworld.request.timeout.millis"`
}

// BearerLeadWindow is how long before expiry a bearer token is renewed.
func (s Settings) BearerLeadWindow() time.Duration {
	return time.Duration(s.BearerLeadSeconds) * time.Second
}

// SignatureValidity is how long a computed signature is reused.
func (s Settings) SignatureValidity() time.Duration {
	return time.Duration(s.SignatureValiditySeconds) * time.Second
}

// SignatureLeadWindow is how long before the end of validity a signature is recomputed.
func (s Settings) SignatureLeadWindow() time.Duration {
	return time.Duration(s.SignatureLeadMillis) * time.Millisecond
}

// RequestTimeout bounds each API request.
func (s Settings) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutMillis) * time.Millisecond
}

// ParseSettings resolves raw properties against the client keys and decodes
// the result. Bearer authentication without an identity endpoint is a
// configuration error.
func ParseSettings(raw map[string]any) (*Settings, error) {
	def, err := NewDefinition()
	if err != nil {
		return nil, err
	}
	values, err := def.Parse(raw)
	if err != nil {
		return nil, err
	}
	return decodeSettings(values)
}

func decodeSettings(values config.Values) (*Settings, error) {
	var settings Settings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &settings,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create settings decoder: %w", err)
	}
	if err := decoder.Decode(map[string]any(values)); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	if settings.AuthMethod == MethodBearer && settings.AuthURL == "" {
		return nil, &config.Error{
			Kind: config.ErrValidationFailed,
			Key:  KeyAuthURL,
			Err:  fmt.Errorf("required when %s is %s", KeyAuthMethod, MethodBearer),
		}
	}
	return &settings, nil
}
