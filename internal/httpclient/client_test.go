package httpclient_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/toolhive-badge-sync/internal/httpclient"
)

// newTestServer creates a new test server with keep-alives disabled.
// This prevents flaky tests when running in parallel, as closing a server
// with keep-alives enabled can affect other tests sharing the HTTP transport.
func newTestServer(handler http.Handler) *httptest.Server {
	server := httptest.NewServer(handler)
	server.Config.SetKeepAlivesEnabled(false)
	return server
}

func TestNewDefaultClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		timeout time.Duration
	}{
		{
			name:    "create client with custom timeout",
			timeout: 5 * time.Second,
		},
		{
			name:    "create client with zero timeout uses default",
			timeout: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := httpclient.NewDefaultClient(tt.timeout)

			require.NotNil(t, client, "client should not be nil")
		})
	}
}

func TestDefaultClient_PostJSON_Success(t *testing.T) {
	t.Parallel()

	var (
		receivedMethod  string
		receivedHeaders http.Header
		receivedBody    map[string]any
	)

	mockServer := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedMethod = r.Method
		receivedHeaders = r.Header.Clone()
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &receivedBody)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"components": []}`))
	}))
	defer mockServer.Close()

	client := httpclient.NewDefaultClient(30 * time.Second)

	data, err := client.PostJSON(context.Background(), mockServer.URL, map[string]any{"page": 2})

	require.NoError(t, err)
	assert.JSONEq(t, `{"components": []}`, string(data))
	assert.Equal(t, http.MethodPost, receivedMethod)
	assert.Equal(t, "thv-badge-sync/1.0", receivedHeaders.Get("User-Agent"))
	assert.Equal(t, "application/json", receivedHeaders.Get("Accept"))
	assert.Equal(t, "application/json", receivedHeaders.Get("Content-Type"))
	assert.Equal(t, float64(2), receivedBody["page"])
}

func TestDefaultClient_PostJSON_CustomUserAgent(t *testing.T) {
	t.Parallel()

	var receivedUserAgent string
	mockServer := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUserAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer mockServer.Close()

	client := httpclient.NewDefaultClient(0, httpclient.WithUserAgent("custom-agent/2.0"))

	_, err := client.PostJSON(context.Background(), mockServer.URL, struct{}{})

	require.NoError(t, err)
	assert.Equal(t, "custom-agent/2.0", receivedUserAgent)
}

func TestDefaultClient_PostJSON_StatusErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		statusCode    int
		errorContains string
	}{
		{
			name:          "404 Not Found",
			statusCode:    http.StatusNotFound,
			errorContains: "404 Not Found",
		},
		{
			name:          "500 Internal Server Error",
			statusCode:    http.StatusInternalServerError,
			errorContains: "500 Internal Server Error",
		},
		{
			name:          "429 Too Many Requests",
			statusCode:    http.StatusTooManyRequests,
			errorContains: "429 Too Many Requests",
		},
		{
			name:          "204 No Content is not OK",
			statusCode:    http.StatusNoContent,
			errorContains: "204 No Content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockServer := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer mockServer.Close()

			client := httpclient.NewDefaultClient(30 * time.Second)

			_, err := client.PostJSON(context.Background(), mockServer.URL, struct{}{})

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)

			var statusErr *httpclient.StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.statusCode, statusErr.StatusCode)
		})
	}
}

func TestDefaultClient_PostJSON_NetworkErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		url           string
		body          any
		errorContains string
	}{
		{
			name:          "invalid URL scheme",
			url:           "://invalid-url",
			body:          struct{}{},
			errorContains: "failed to create request",
		},
		{
			name:          "unreachable host",
			url:           "http://invalid-host-does-not-exist.local:9999",
			body:          struct{}{},
			errorContains: "failed to execute request",
		},
		{
			name:          "unmarshalable body",
			url:           "http://localhost",
			body:          map[string]any{"fn": func() {}},
			errorContains: "failed to marshal request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := httpclient.NewDefaultClient(30 * time.Second)

			_, err := client.PostJSON(context.Background(), tt.url, tt.body)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestDefaultClient_PostJSON_ContextCancellation(t *testing.T) {
	t.Parallel()

	mockServer := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer mockServer.Close()

	client := httpclient.NewDefaultClient(30 * time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := client.PostJSON(ctx, mockServer.URL, struct{}{})

	require.Error(t, err)
}

func TestDefaultClient_PostJSON_SizeLimitExceeded(t *testing.T) {
	t.Parallel()

	mockServer := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", 11*1024*1024))
		w.WriteHeader(http.StatusOK)
	}))
	defer mockServer.Close()

	client := httpclient.NewDefaultClient(30 * time.Second)

	_, err := client.PostJSON(context.Background(), mockServer.URL, struct{}{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum allowed size")
}
