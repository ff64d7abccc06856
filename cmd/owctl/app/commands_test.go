// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/expediagroup/openworld-sdk-go/pkg/config"
	"github.com/expediagroup/openworld-sdk-go/pkg/sdk"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /identity/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, secret, _ := r.BasicAuth(); secret != "cli-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"cli-token","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("GET /v3/regions", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer cli-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[{"id":"6054439"}]`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func writeProperties(t *testing.T, server *httptest.Server, secret string) string {
	t.Helper()

	content := fmt.Sprintf(`openworld.client.key=cli-key
openworld.client.secret=%s
openworld.endpoint=%s/v3
openworld.auth.url=%s/identity/token
`, secret, server.URL, server.URL)

	path := filepath.Join(t.TempDir(), "owctl.properties")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestKeysCmd(t *testing.T) { //nolint:paralleltest // root command initializes the global logger
	out, err := execute(t, "keys")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 11)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, out, sdk.KeyClientSecret)
	assert.Contains(t, out, "PASSWORD")
	assert.Contains(t, out, "(required)")
	assert.Contains(t, out, `"bearer"`)
}

func TestKeysCmd_JSON(t *testing.T) { //nolint:paralleltest // root command initializes the global logger
	out, err := execute(t, "keys", "--format", FormatJSON)
	require.NoError(t, err)

	var keys []keyInfo
	require.NoError(t, json.Unmarshal([]byte(out), &keys))
	require.Len(t, keys, 10)
	assert.Equal(t, sdk.KeyClientKey, keys[0].Name)
	assert.True(t, keys[0].Required)
	assert.Equal(t, config.TypeString.String(), keys[0].Type)

	_, err = execute(t, "keys", "--format", "xml")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestKeysCmd_YAML(t *testing.T) { //nolint:paralleltest // root command initializes the global logger
	out, err := execute(t, "keys", "--format", FormatYAML)
	require.NoError(t, err)

	var keys []keyInfo
	require.NoError(t, yaml.Unmarshal([]byte(out), &keys))
	require.Len(t, keys, 10)
	assert.Equal(t, sdk.KeyAuthMethod, keys[3].Name)
	assert.Equal(t, sdk.MethodBearer, keys[3].Default)
	assert.False(t, keys[3].Required)
}

func TestHeaderCmd(t *testing.T) { //nolint:paralleltest // root command initializes the global logger
	server := newTestAPI(t)
	path := writeProperties(t, server, "cli-secret")

	out, err := execute(t, "header", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "Bearer cli-token\n", out)
}

func TestHeaderCmd_Rejected(t *testing.T) { //nolint:paralleltest // root command initializes the global logger
	server := newTestAPI(t)
	path := writeProperties(t, server, "bad-secret")

	_, err := execute(t, "header", "--config", path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to authenticate")
	assert.NotContains(t, err.Error(), "bad-secret")
}

func TestGetCmd(t *testing.T) { //nolint:paralleltest // root command initializes the global logger
	server := newTestAPI(t)
	path := writeProperties(t, server, "cli-secret")

	out, err := execute(t, "get", "regions", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "200 OK")
	assert.Contains(t, out, `"6054439"`)
}

func TestGetCmd_EnvOverride(t *testing.T) { //nolint:paralleltest // uses t.Setenv
	server := newTestAPI(t)
	path := writeProperties(t, server, "bad-secret")
	t.Setenv("OWCTL_OPENWORLD_CLIENT_SECRET", "cli-secret")

	out, err := execute(t, "get", "/regions", "--config", path, "--env-prefix", "OWCTL")
	require.NoError(t, err)
	assert.Contains(t, out, "200 OK")
}

func TestGetCmd_MissingConfiguration(t *testing.T) { //nolint:paralleltest // root command initializes the global logger
	_, err := execute(t, "get", "regions", "--env-prefix", "OWCTL_UNSET")
	require.Error(t, err)
	assert.True(t, config.IsMissingRequired(err))
}

func TestHeaderCmd_Metrics(t *testing.T) { //nolint:paralleltest // root command initializes the global logger
	server := newTestAPI(t)
	path := writeProperties(t, server, "cli-secret")

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"header", "--config", path, "--metrics"})
	require.NoError(t, cmd.ExecuteContext(t.Context()))

	assert.Equal(t, "Bearer cli-token\n", stdout.String())
	assert.Contains(t, stderr.String(), "openworld_auth_token_renewals")
	assert.Contains(t, stderr.String(), `result="success"`)
}
