package http_test

import (
	"context"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netvista-io/netsync/internal/auth"
	internalhttp "github.com/netvista-io/netsync/internal/http"
	"github.com/netvista-io/netsync/pkg/netsync"
)

type staticTokens struct {
	token string
	err   error
}

func (s *staticTokens) Token(ctx context.Context) (string, error) {
	return s.token, s.err
}

func fastRetries() internalhttp.Option {
	return internalhttp.WithRetryConfig(3, time.Millisecond, 4*time.Millisecond)
}

//nolint:funlen
func TestClient_Do(t *testing.T) {
	t.Parallel()

	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
			assert.Equal(t, "/api/clients/servers/", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "Bearer test-token", request.Header.Get("Authorization"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))
			assert.NotEmpty(t, request.Header.Get("X-Request-ID"))

			_ = json.NewEncoder(writer).Encode(map[string]string{"id": "srv-1", "name": "core"})
		}))
		defer server.Close()

		creds, err := auth.NewChainProvider(&staticTokens{token: "test-token"}, "", "")
		require.NoError(t, err)

		client := internalhttp.NewClient(server.URL, creds)

		resp, err := client.Do(context.Background(), &internalhttp.Request{
			Method: "GET",
			Path:   "/api/clients/servers/",
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.NotEmpty(t, resp.Metadata.RequestID)
		assert.Zero(t, resp.Metadata.RetryAttempt)

		var result map[string]string

		err = json.Unmarshal(resp.Body, &result)
		require.NoError(t, err)
		assert.Equal(t, "srv-1", result["id"])
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
			assert.Equal(t, "page=2", request.URL.RawQuery)
			writer.WriteHeader(nethttp.StatusOK)
		}))
		defer server.Close()

		client := internalhttp.NewClient(server.URL, nil)

		resp, err := client.Do(context.Background(), &internalhttp.Request{
			Method: "GET",
			Path:   "/api/clients/",
			Query:  url.Values{"page": []string{"2"}},
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]string

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Equal(t, "lab-client", body["name"])

			writer.WriteHeader(nethttp.StatusCreated)
		}))
		defer server.Close()

		client := internalhttp.NewClient(server.URL, nil)

		resp, err := client.Do(context.Background(), &internalhttp.Request{
			Method: "POST",
			Path:   "/api/clients/",
			Body:   map[string]string{"name": "lab-client"},
		})
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
	})

	t.Run("basic auth fallback", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
			user, pass, ok := request.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "admin", user)
			assert.Equal(t, "secret", pass)
			writer.WriteHeader(nethttp.StatusOK)
		}))
		defer server.Close()

		creds, err := auth.NewChainProvider(nil, "admin", "secret")
		require.NoError(t, err)

		client := internalhttp.NewClient(server.URL, creds)

		resp, err := client.Get(context.Background(), "/api/clients/", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("error status is classified", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
			writer.WriteHeader(nethttp.StatusNotFound)
			_ = json.NewEncoder(writer).Encode(map[string]string{"detail": "server not found"})
		}))
		defer server.Close()

		client := internalhttp.NewClient(server.URL, nil)

		resp, err := client.Get(context.Background(), "/api/clients/servers/missing/", nil)
		require.Error(t, err)
		assert.Equal(t, 404, resp.StatusCode)

		apiErr := &netsync.APIError{}
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, netsync.ErrKindNotFound, apiErr.Kind)
		assert.Equal(t, "server not found", apiErr.Detail)
		assert.Equal(t, "GET /api/clients/servers/missing/", apiErr.Operation)
		assert.NotEmpty(t, apiErr.RequestID)
	})

	t.Run("connection failure is a network error", func(t *testing.T) {
		t.Parallel()

		client := internalhttp.NewClient("http://127.0.0.1:1", nil, fastRetries())

		_, err := client.Get(context.Background(), "/api/clients/", nil)
		require.Error(t, err)

		apiErr := &netsync.APIError{}
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, netsync.ErrKindNetwork, apiErr.Kind)
	})
}

func TestClient_Retries(t *testing.T) {
	t.Parallel()

	t.Run("retries transient server errors", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32

		server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
			if calls.Add(1) <= 2 {
				writer.WriteHeader(nethttp.StatusServiceUnavailable)

				return
			}

			writer.WriteHeader(nethttp.StatusOK)
		}))
		defer server.Close()

		client := internalhttp.NewClient(server.URL, nil, fastRetries())

		resp, err := client.Get(context.Background(), "/api/views/overview/", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(3), calls.Load())
		assert.Equal(t, 2, resp.Metadata.RetryAttempt)

		stats := client.Stats()
		assert.Equal(t, int64(1), stats.Requests)
		assert.Equal(t, int64(2), stats.Retries)
	})

	t.Run("gives up after the retry budget", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32

		server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
			calls.Add(1)
			writer.WriteHeader(nethttp.StatusInternalServerError)
		}))
		defer server.Close()

		client := internalhttp.NewClient(server.URL, nil, fastRetries())

		resp, err := client.Get(context.Background(), "/api/views/overview/", nil)
		require.Error(t, err)
		assert.Equal(t, 500, resp.StatusCode)
		assert.Equal(t, int32(4), calls.Load())

		apiErr := &netsync.APIError{}
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, netsync.ErrKindServer, apiErr.Kind)
		assert.True(t, apiErr.Retryable())
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32

		server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
			calls.Add(1)
			writer.WriteHeader(nethttp.StatusBadRequest)
		}))
		defer server.Close()

		client := internalhttp.NewClient(server.URL, nil, fastRetries())

		_, err := client.Get(context.Background(), "/api/qos-management/policies/", nil)
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("retries attempts that time out", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32

		server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
			if calls.Add(1) <= 2 {
				time.Sleep(200 * time.Millisecond)

				return
			}

			writer.WriteHeader(nethttp.StatusOK)
		}))
		defer server.Close()

		client := internalhttp.NewClient(server.URL, nil, fastRetries(),
			internalhttp.WithTimeouts(50*time.Millisecond, 50*time.Millisecond))

		resp, err := client.Get(context.Background(), "/api/views/overview/", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(3), calls.Load())
		assert.Equal(t, 2, resp.Metadata.RetryAttempt)
	})

	t.Run("surfaces a timeout once the budget is spent", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32

		server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
			calls.Add(1)
			time.Sleep(150 * time.Millisecond)
		}))
		defer server.Close()

		client := internalhttp.NewClient(server.URL, nil,
			internalhttp.WithRetryConfig(1, time.Millisecond, 2*time.Millisecond),
			internalhttp.WithTimeouts(30*time.Millisecond, 30*time.Millisecond))

		_, err := client.Get(context.Background(), "/api/views/overview/", nil)
		require.Error(t, err)
		assert.Equal(t, int32(2), calls.Load())

		apiErr := &netsync.APIError{}
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, netsync.ErrKindTimeout, apiErr.Kind)
	})

	t.Run("does not retry caller cancellation", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32

		server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
			calls.Add(1)
			time.Sleep(150 * time.Millisecond)
		}))
		defer server.Close()

		client := internalhttp.NewClient(server.URL, nil, fastRetries())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		_, err := client.Get(ctx, "/api/views/overview/", nil)
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())

		apiErr := &netsync.APIError{}
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, netsync.ErrKindTimeout, apiErr.Kind)
	})

	t.Run("does not retry a permanent transport failure", func(t *testing.T) {
		t.Parallel()

		client := internalhttp.NewClient("ftp://127.0.0.1", nil, fastRetries())

		_, err := client.Get(context.Background(), "/api/clients/", nil)
		require.Error(t, err)

		apiErr := &netsync.APIError{}
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, netsync.ErrKindNetwork, apiErr.Kind)
		assert.Zero(t, client.Stats().Retries)
	})

	t.Run("does not retry rate limiting", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32

		server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
			calls.Add(1)
			writer.WriteHeader(nethttp.StatusTooManyRequests)
		}))
		defer server.Close()

		client := internalhttp.NewClient(server.URL, nil, fastRetries())

		_, err := client.Get(context.Background(), "/api/equipment/", nil)
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())

		apiErr := &netsync.APIError{}
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, netsync.ErrKindRateLimited, apiErr.Kind)
		assert.False(t, apiErr.Retryable())
	})
}

func TestClient_Helpers(t *testing.T) {
	t.Parallel()

	var lastMethod atomic.Value

	server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
		lastMethod.Store(request.Method)
		writer.WriteHeader(nethttp.StatusOK)
	}))
	defer server.Close()

	client := internalhttp.NewClient(server.URL, nil)
	ctx := context.Background()

	_, err := client.Post(ctx, "/api/clients/", map[string]string{"name": "x"})
	require.NoError(t, err)
	assert.Equal(t, "POST", lastMethod.Load())

	_, err = client.Put(ctx, "/api/dashboard/widgets/layout/", map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, "PUT", lastMethod.Load())

	_, err = client.Patch(ctx, "/api/qos-management/policies/p1/", map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, "PATCH", lastMethod.Load())

	_, err = client.Delete(ctx, "/api/qos-management/policies/p1/")
	require.NoError(t, err)
	assert.Equal(t, "DELETE", lastMethod.Load())
}

func TestClient_Stats(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
		writer.WriteHeader(nethttp.StatusOK)
	}))
	defer server.Close()

	client := internalhttp.NewClient(server.URL, nil)

	_, err := client.Get(context.Background(), "/api/clients/", nil)
	require.NoError(t, err)

	stats := client.Stats()
	assert.Equal(t, int64(1), stats.Requests)
	assert.Zero(t, stats.Errors)

	client.ResetStats()
	assert.Zero(t, client.Stats().Requests)
}

func TestClient_Interceptors(t *testing.T) {
	t.Parallel()

	t.Run("request interceptor headers reach the wire", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
			assert.Equal(t, "netvista-ui", request.Header.Get("X-Origin"))
			writer.WriteHeader(nethttp.StatusOK)
		}))
		defer server.Close()

		chain := netsync.NewInterceptorChain()
		chain.AddRequestInterceptor(netsync.HeaderInterceptor(map[string]string{"X-Origin": "netvista-ui"}))

		client := internalhttp.NewClient(server.URL, nil, internalhttp.WithInterceptors(chain))

		_, err := client.Get(context.Background(), "/api/equipment/", nil)
		require.NoError(t, err)
	})

	t.Run("metrics observe latency and failures", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32

		server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
			if calls.Add(1) > 1 {
				writer.WriteHeader(nethttp.StatusNotFound)

				return
			}

			writer.WriteHeader(nethttp.StatusOK)
		}))
		defer server.Close()

		collector := netsync.NewMetricsCollector()
		chain := netsync.NewInterceptorChain()
		chain.AddRequestInterceptor(netsync.MetricsRequestInterceptor(collector))
		chain.AddResponseInterceptor(netsync.MetricsResponseInterceptor(collector))

		client := internalhttp.NewClient(server.URL, nil, internalhttp.WithInterceptors(chain))
		ctx := context.Background()

		_, err := client.Get(ctx, "/api/equipment/", nil)
		require.NoError(t, err)

		_, err = client.Get(ctx, "/api/equipment/", nil)
		require.Error(t, err)

		metrics := collector.GetMetrics("GET /api/equipment/")
		require.NotNil(t, metrics)
		assert.Equal(t, int64(2), metrics.TotalRequests)
		assert.Equal(t, int64(1), metrics.TotalErrors)
		assert.Positive(t, metrics.AverageLatency)
	})

	t.Run("response interceptor sees the classified error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
			writer.WriteHeader(nethttp.StatusForbidden)
		}))
		defer server.Close()

		var seen atomic.Value

		chain := netsync.NewInterceptorChain()
		chain.AddResponseInterceptor(func(ctx context.Context, req *netsync.Request, resp *netsync.Response) error {
			if resp.Error != nil {
				seen.Store(resp.Error)
			}

			return nil
		})

		client := internalhttp.NewClient(server.URL, nil, internalhttp.WithInterceptors(chain))

		_, err := client.Get(context.Background(), "/api/equipment/", nil)
		require.Error(t, err)

		stored, ok := seen.Load().(error)
		require.True(t, ok)

		apiErr := &netsync.APIError{}
		require.True(t, errors.As(stored, &apiErr))
		assert.Equal(t, netsync.ErrKindForbidden, apiErr.Kind)
	})
}

func TestClient_UserAgent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
		assert.Equal(t, "netsync-test", request.Header.Get("User-Agent"))
		writer.WriteHeader(nethttp.StatusOK)
	}))
	defer server.Close()

	client := internalhttp.NewClient(server.URL, nil, internalhttp.WithUserAgent("netsync-test"))

	_, err := client.Get(context.Background(), "/api/clients/", nil)
	require.NoError(t, err)
}
