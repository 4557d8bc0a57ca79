package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCreation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		baseURL     string
		timeout     time.Duration
		maxRetries  int
		wantTimeout time.Duration
		wantRetries int
	}{
		{
			name:        "default configuration",
			baseURL:     "https://service.iris.edu",
			wantTimeout: 30 * time.Second,
			wantRetries: 3,
		},
		{
			name:        "custom configuration",
			baseURL:     "https://www.fdsn.example",
			timeout:     5 * time.Second,
			maxRetries:  5,
			wantTimeout: 5 * time.Second,
			wantRetries: 5,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := New(Options{
				BaseURL:    tt.baseURL,
				Timeout:    tt.timeout,
				MaxRetries: tt.maxRetries,
			})

			assert.Equal(t, tt.baseURL, client.baseURL)
			assert.Equal(t, tt.wantTimeout, client.httpClient.Timeout)
			assert.Equal(t, tt.wantRetries, client.maxRetries)
		})
	}
}

func TestRequestFormatting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		useBase  bool
		path     string
		wantURL  string
		wantCode int
	}{
		{
			name:     "absolute URL",
			path:     "/fdsnws/station/1/query?net=BJ&level=station",
			wantURL:  "/fdsnws/station/1/query?net=BJ&level=station",
			wantCode: http.StatusOK,
		},
		{
			name:     "relative path with base URL",
			useBase:  true,
			path:     "/inventory.xml",
			wantURL:  "/inventory.xml",
			wantCode: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.wantURL, r.URL.String())
				assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
				w.WriteHeader(tt.wantCode)
			}))
			defer server.Close()

			opts := Options{Timeout: 5 * time.Second}
			path := server.URL + tt.path
			if tt.useBase {
				opts.BaseURL = server.URL
				path = tt.path
			}

			resp, err := New(opts).Get(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
		})
	}
}

func TestRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("<FDSNStationXML/>"))
	}))
	defer server.Close()

	client := New(Options{BaseURL: server.URL, RetryDelay: time.Millisecond})

	resp, err := client.Get(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<FDSNStationXML/>", string(resp.Body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestLastServerErrorReturnedAsResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(Options{BaseURL: server.URL, MaxRetries: 2, RetryDelay: time.Millisecond})

	resp, err := client.Get(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestGetFuncOverride(t *testing.T) {
	t.Parallel()

	client := New(Options{})
	client.GetFunc = func(ctx context.Context, path string) (*Response, error) {
		return &Response{StatusCode: http.StatusTeapot, Body: []byte(path)}, nil
	}

	resp, err := client.Get(context.Background(), "stub")
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "stub", string(resp.Body))
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(Options{
		BaseURL:    server.URL,
		Timeout:    50 * time.Millisecond,
		MaxRetries: 1,
	})

	_, err := client.Get(context.Background(), "/test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadline exceeded")
}
