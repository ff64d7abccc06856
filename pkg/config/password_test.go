// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword_NeverRendersSecret(t *testing.T) {
	t.Parallel()

	p := NewPassword("hunter2")
	assert.Equal(t, "hunter2", p.Value())

	for _, rendered := range []string{
		p.String(),
		fmt.Sprintf("%v", p),
		fmt.Sprintf("%s", p),
		fmt.Sprintf("%#v", p),
		fmt.Sprintf("%+v", struct{ P Password }{p}),
	} {
		assert.NotContains(t, rendered, "hunter2")
	}

	data, err := json.Marshal(map[string]any{"secret": p})
	require.NoError(t, err)
	assert.JSONEq(t, `{"secret":"[hidden]"}`, string(data))

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("configured", "secret", p)
	assert.NotContains(t, buf.String(), "hunter2")
	assert.Contains(t, buf.String(), "[hidden]")
}
