// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package sdk

import (
	"github.com/expediagroup/openworld-sdk-go/pkg/config"
)

// Configuration key names.
const (
	KeyClientKey         = "openworld.client.key"
	KeyClientSecret      = "openworld.client.secret"
	KeyEndpoint          = "openworld.endpoint"
	KeyAuthMethod        = "openworld.auth.method"
	KeyAuthURL           = "openworld.auth.url"
	KeyAuthScopes        = "openworld.auth.scopes"
	KeyBearerLead        = "openworld.auth.bearer.lead.seconds"
	KeySignatureValidity = "openworld.auth.signature.validity.seconds"
	KeySignatureLead     = "openworld.auth.signature.lead.millis"
	KeyRequestTimeout    = "openworld.request.timeout.millis"
)

// Authentication methods accepted by KeyAuthMethod.
const (
	MethodBearer    = "bearer"
	MethodSignature = "signature"
)

// NewDefinition returns a fresh definition of every key the client reads.
// Each call returns a new, unfrozen definition.
func NewDefinition() (*config.Definition, error) {
	def := config.NewDefinition()

	keys := []config.Key{
		{
			Name:          KeyClientKey,
			Documentation: "API key issued to the partner.",
			Type:          config.TypeString,
			Importance:    config.ImportanceHigh,
			Validator:     config.NonEmptyString(),
		},
		{
			Name:          KeyClientSecret,
			Documentation: "Shared secret paired with the API key.",
			Type:          config.TypePassword,
			Importance:    config.ImportanceHigh,
		},
		{
			Name:          KeyEndpoint,
			Documentation: "Base URL of the Open World API.",
			Type:          config.TypeString,
			Importance:    config.ImportanceHigh,
			Validator:     config.AbsoluteURL(false),
		},
		{
			Name:          KeyAuthMethod,
			Documentation: "Authentication method: bearer or signature.",
			Type:          config.TypeString,
			Importance:    config.ImportanceMedium,
			Default:       MethodBearer,
			HasDefault:    true,
			Validator:     config.OneOf(MethodBearer, MethodSignature),
		},
		{
			Name:          KeyAuthURL,
			Documentation: "Token endpoint of the identity service. Required for bearer authentication.",
			Type:          config.TypeString,
			Importance:    config.ImportanceMedium,
			Default:       "",
			HasDefault:    true,
			Validator:     config.AbsoluteURL(true),
		},
		{
			Name:          KeyAuthScopes,
			Documentation: "Comma separated OAuth2 scopes requested with each token.",
			Type:          config.TypeList,
			Importance:    config.ImportanceLow,
			Default:       "",
			HasDefault:    true,
		},
		{
			Name:          KeyBearerLead,
			Documentation: "Seconds before expiry at which a bearer token is renewed.",
			Type:          config.TypeInt,
			Importance:    config.ImportanceLow,
			Default:       10,
			HasDefault:    true,
			Validator:     config.AtLeast(0),
		},
		{
			Name:          KeySignatureValidity,
			Documentation: "Seconds a computed signature is reused.",
			Type:          config.TypeInt,
			Importance:    config.ImportanceLow,
			Default:       300,
			HasDefault:    true,
			Validator:     config.AtLeast(1),
		},
		{
			Name:          KeySignatureLead,
			Documentation: "Milliseconds before the end of validity at which a signature is recomputed.",
			Type:          config.TypeInt,
			Importance:    config.ImportanceLow,
			Default:       500,
			HasDefault:    true,
			Validator:     config.AtLeast(0),
		},
		{
			Name:          KeyRequestTimeout,
			Documentation: "Timeout in milliseconds for each API request.",
			Type:          config.TypeInt,
			Importance:    config.ImportanceLow,
			Default:       30000,
			HasDefault:    true,
			Validator:     config.AtLeast(1),
		},
	}

	for _, key := range keys {
		if err := def.DefineKey(key); err != nil {
			return nil, err
		}
	}
	return def, nil
}
