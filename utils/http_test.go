package utils

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shopify-feed/internal/types"
)

func testConfig() *types.Config {
	config := types.DefaultConfig()
	config.RequestDelay = 10 * time.Millisecond // Faster for testing
	config.MaxRetries = 1
	return config
}

func TestNewHTTPClient(t *testing.T) {
	config := types.DefaultConfig()
	logger := logrus.New()

	client := NewHTTPClient(config, logger)

	assert.NotNil(t, client)
	assert.Equal(t, config, client.config)
	assert.Equal(t, logger, client.logger)
	assert.NotNil(t, client.client)
	assert.NotNil(t, client.limiter)

	client.Close()
}

func TestHTTPClient_Get_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("test response"))
	}))
	defer server.Close()

	client := NewHTTPClient(testConfig(), logrus.New())
	defer client.Close()

	body, err := client.Get(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "test response", string(body))
}

func TestHTTPClient_Get_NotFound(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewHTTPClient(testConfig(), logrus.New())
	defer client.Close()

	_, err := client.Get(context.Background(), server.URL)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 404")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx answers are not retried")
}

func TestHTTPClient_Get_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewHTTPClient(testConfig(), logrus.New())
	defer client.Close()

	body, err := client.Get(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHTTPClient_Get_ContextCancelled(t *testing.T) {
	config := types.DefaultConfig()
	config.RequestDelay = 100 * time.Millisecond
	client := NewHTTPClient(config, logrus.New())
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err := client.Get(ctx, "http://example.com")

	assert.Error(t, err)
	assert.Equal(t, context.Canceled, err)
}

func TestHTTPClient_PostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-API-KEY"))

		var in map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		json.NewEncoder(w).Encode(map[string]interface{}{"echo": in["q"]})
	}))
	defer server.Close()

	client := NewHTTPClient(testConfig(), logrus.New())
	defer client.Close()

	var out struct {
		Echo string `json:"echo"`
	}
	err := client.PostJSON(context.Background(), server.URL, map[string]string{"X-API-KEY": "secret"}, map[string]string{"q": "bat"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "bat", out.Echo)
}

func TestHTTPClient_Fetch_WrapsErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewHTTPClient(testConfig(), logrus.New())
	defer client.Close()

	_, err := client.Fetch(context.Background(), server.URL)

	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrFetch))
}

func TestHTTPClient_Close(t *testing.T) {
	client := NewHTTPClient(types.DefaultConfig(), logrus.New())

	// Should not panic
	client.Close()
}
