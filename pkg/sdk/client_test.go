// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package sdk_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/mock/gomock"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/expediagroup/openworld-sdk-go/pkg/auth"
	"github.com/expediagroup/openworld-sdk-go/pkg/auth/mocks"
	"github.com/expediagroup/openworld-sdk-go/pkg/config"
	"github.com/expediagroup/openworld-sdk-go/pkg/sdk"
)

// partnerAPI fakes both the identity service and the API it protects.
type partnerAPI struct {
	*httptest.Server
	expiresIn int

	tokenHits atomic.Int32
	apiHits   atomic.Int32

	mu      sync.Mutex
	headers []string
	scopes  []string
}

func newPartnerAPI(t *testing.T, expiresIn int) *partnerAPI {
	t.Helper()

	api := &partnerAPI{expiresIn: expiresIn}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /identity/v1/token", func(w http.ResponseWriter, r *http.Request) {
		n := api.tokenHits.Add(1)
		w.Header().Set("Content-Type", "application/json")

		key, secret, ok := r.BasicAuth()
		if !ok || key != "client-key" || secret != "client-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"bad credentials"}`))
			return
		}
		_ = r.ParseForm()
		api.mu.Lock()
		api.scopes = append(api.scopes, r.PostForm.Get("scope"))
		api.mu.Unlock()

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": fmt.Sprintf("token-%d", n),
			"token_type":   "bearer",
			"expires_in":   api.expiresIn,
			"scope":        r.PostForm.Get("scope"),
		})
	})
	mux.HandleFunc("/v3/", func(w http.ResponseWriter, r *http.Request) {
		api.apiHits.Add(1)
		api.mu.Lock()
		api.headers = append(api.headers, r.Header.Get("Authorization"))
		api.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"path":%q}`, r.URL.RequestURI())
	})
	api.Server = httptest.NewServer(mux)
	t.Cleanup(api.Close)
	return api
}

func (api *partnerAPI) raw(secret string) map[string]any {
	return map[string]any{
		sdk.KeyClientKey:    "client-key",
		sdk.KeyClientSecret: secret,
		sdk.KeyEndpoint:     api.URL + "/v3/",
		sdk.KeyAuthURL:      api.URL + "/identity/v1/token",
	}
}

func (api *partnerAPI) seenHeaders() []string {
	api.mu.Lock()
	defer api.mu.Unlock()
	return append([]string(nil), api.headers...)
}

func getPath(t *testing.T, client *sdk.Client, path string) (string, error) {
	t.Helper()

	req, err := client.NewRequest(t.Context(), http.MethodGet, path, nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body), nil
}

func TestClient_ShortLivedTokens(t *testing.T) {
	t.Parallel()

	api := newPartnerAPI(t, 1)
	client, err := sdk.NewClient(api.raw("client-secret"), sdk.WithHTTPClient(api.Client()))
	require.NoError(t, err)

	_, err = getPath(t, client, "/properties/content")
	require.NoError(t, err)
	_, err = getPath(t, client, "/properties/content")
	require.NoError(t, err)

	headers := api.seenHeaders()
	require.Len(t, headers, 2)
	assert.NotEqual(t, headers[0], headers[1])
	assert.Equal(t, int32(2), api.tokenHits.Load())
}

func TestClient_LongLivedToken(t *testing.T) {
	t.Parallel()

	api := newPartnerAPI(t, 1000)
	client, err := sdk.NewClient(api.raw("client-secret"), sdk.WithHTTPClient(api.Client()))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = getPath(t, client, "/properties/content")
		require.NoError(t, err)
	}

	headers := api.seenHeaders()
	require.Len(t, headers, 3)
	for _, h := range headers {
		assert.Equal(t, "Bearer token-1", h)
	}
	assert.Equal(t, int32(1), api.tokenHits.Load())
}

func TestClient_BadCredentials(t *testing.T) {
	t.Parallel()

	api := newPartnerAPI(t, 1000)
	client, err := sdk.NewClient(api.raw("wrong-secret"), sdk.WithHTTPClient(api.Client()))
	require.NoError(t, err)

	_, err = getPath(t, client, "/properties/content")
	require.Error(t, err)
	assert.True(t, auth.IsCredentialRejected(err))
	assert.NotContains(t, err.Error(), "wrong-secret")
	assert.Equal(t, int32(0), api.apiHits.Load())
}

func TestClient_ConcurrentRequestsShareRenewal(t *testing.T) {
	t.Parallel()

	api := newPartnerAPI(t, 1000)
	client, err := sdk.NewClient(api.raw("client-secret"), sdk.WithHTTPClient(api.Client()))
	require.NoError(t, err)

	const requests = 20
	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := getPath(t, client, "/properties/content")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), api.tokenHits.Load())
	for _, h := range api.seenHeaders() {
		assert.Equal(t, "Bearer token-1", h)
	}
}

func TestClient_RequestedScopes(t *testing.T) {
	t.Parallel()

	api := newPartnerAPI(t, 1000)
	raw := api.raw("client-secret")
	raw[sdk.KeyAuthScopes] = "content, booking"

	client, err := sdk.NewClient(raw, sdk.WithHTTPClient(api.Client()))
	require.NoError(t, err)

	header, err := client.AuthorizationHeader(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "Bearer token-1", header)

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, []string{"content booking"}, api.scopes)
}

func TestClient_Signature(t *testing.T) {
	t.Parallel()

	api := newPartnerAPI(t, 1000)
	fakeClock := testingclock.NewFakeClock(time.Unix(1700000000, 0))

	raw := api.raw("client-secret")
	raw[sdk.KeyAuthMethod] = "signature"
	delete(raw, sdk.KeyAuthURL)

	client, err := sdk.NewClient(raw, sdk.WithHTTPClient(api.Client()), sdk.WithClock(fakeClock))
	require.NoError(t, err)
	assert.Equal(t, "signature", client.Strategy().Name())

	_, err = getPath(t, client, "/properties/content")
	require.NoError(t, err)

	headers := api.seenHeaders()
	require.Len(t, headers, 1)
	assert.True(t, strings.HasPrefix(headers[0], "EAN APIKey=client-key,Signature="))
	assert.True(t, strings.HasSuffix(headers[0], ",timestamp=1700000000"))
	assert.Equal(t, int32(0), api.tokenHits.Load())
}

func TestClient_CustomSigner(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		sdk.KeyClientKey:    "k",
		sdk.KeyClientSecret: "s",
		sdk.KeyEndpoint:     "https://api.example.com",
		sdk.KeyAuthMethod:   "signature",
	}
	client, err := sdk.NewClient(raw, sdk.WithSigner(func(key, _ string, _ time.Time) (string, error) {
		return "custom-" + key, nil
	}))
	require.NoError(t, err)

	header, err := client.AuthorizationHeader(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "EAN custom-k", header)
}

func TestClient_TokenIssuerOption(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	issuer := mocks.NewMockTokenIssuer(ctrl)
	issuer.EXPECT().Issue(gomock.Any(), gomock.Any()).
		Return(&auth.Token{Value: "mocked", ExpiresAt: time.Now().Add(time.Hour)}, nil)

	spanRecorder := tracetest.NewSpanRecorder()
	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spanRecorder))

	raw := map[string]any{
		sdk.KeyClientKey:    "k",
		sdk.KeyClientSecret: "s",
		sdk.KeyEndpoint:     "https://api.example.com",
		sdk.KeyAuthURL:      "https://id.example.com/token",
	}
	client, err := sdk.NewClient(raw, sdk.WithTokenIssuer(issuer), sdk.WithTracerProvider(tracerProvider))
	require.NoError(t, err)

	header, err := client.AuthorizationHeader(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "Bearer mocked", header)
	assert.Len(t, spanRecorder.Ended(), 1)
}

func TestClient_ConfigurationErrors(t *testing.T) {
	t.Parallel()

	_, err := sdk.NewClient(map[string]any{})
	require.Error(t, err)
	assert.True(t, config.IsMissingRequired(err))
	assert.Equal(t,
		[]string{sdk.KeyClientKey, sdk.KeyClientSecret, sdk.KeyEndpoint},
		config.MissingKeys(err))

	_, err = sdk.NewClient(map[string]any{
		sdk.KeyClientKey:    "k",
		sdk.KeyClientSecret: "s",
		sdk.KeyEndpoint:     "https://api.example.com",
	})
	assert.ErrorIs(t, err, config.ErrValidationFailed)
}

func TestClient_NewRequest(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		sdk.KeyClientKey:    "k",
		sdk.KeyClientSecret: "s",
		sdk.KeyEndpoint:     "https://api.example.com/v3/",
		sdk.KeyAuthMethod:   "signature",
	}
	client, err := sdk.NewClient(raw)
	require.NoError(t, err)

	tests := []struct {
		path string
		want string
	}{
		{path: "properties", want: "https://api.example.com/v3/properties"},
		{path: "/properties/content?language=en-US", want: "https://api.example.com/v3/properties/content?language=en-US"},
	}
	for _, tt := range tests {
		req, err := client.NewRequest(context.Background(), http.MethodGet, tt.path, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, req.URL.String())
	}

	_, err = client.NewRequest(context.Background(), http.MethodGet, "https://elsewhere.example.com/x", nil)
	assert.Error(t, err)

	assert.Equal(t, "https://api.example.com/v3/", client.Settings().Endpoint)
	assert.Equal(t, 30*time.Second, client.HTTPClient().Timeout)
}

func TestClient_DoesNotModifyProvidedHTTPClient(t *testing.T) {
	t.Parallel()

	base := &http.Client{Transport: http.DefaultTransport}
	raw := map[string]any{
		sdk.KeyClientKey:    "k",
		sdk.KeyClientSecret: "s",
		sdk.KeyEndpoint:     "https://api.example.com",
		sdk.KeyAuthMethod:   "signature",
	}
	client, err := sdk.NewClient(raw, sdk.WithHTTPClient(base))
	require.NoError(t, err)

	assert.Same(t, http.DefaultTransport, base.Transport)
	assert.NotSame(t, base, client.HTTPClient())

	_, ok := client.HTTPClient().Transport.(*auth.Transport)
	assert.True(t, ok)
}
