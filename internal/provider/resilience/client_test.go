package resilience_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqsfetch/aqsfetch/internal/provider/resilience"
)

func newClient(cb *resilience.CircuitBreakerConfig) *resilience.Client {
	return resilience.NewClient(resilience.ClientConfig{
		Name:            "test",
		Timeout:         time.Second,
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		CircuitBreaker:  cb,
	})
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	resp, err := newClient(nil).Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestClient_ReturnsLastResponseAfterExhaustion(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	// The 5xx that survives all retries comes back as a response so the
	// caller can report the real status.
	resp, err := newClient(nil).Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestClient_DoesNotRetrySuccess(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	// 4xx is the server's final answer, not a transient fault.
	resp, err := newClient(nil).Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_CircuitOpens(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newClient(&resilience.CircuitBreakerConfig{
		Name:        "test",
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 1
		},
	})

	req, err := http.NewRequest(http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	// First call trips the breaker on its initial failure; its retries are
	// short-circuited and the 500 comes back as the last response.
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, int32(1), attempts.Load())
	assert.Equal(t, gobreaker.StateOpen, client.State())

	// Second call never reaches the server.
	_, err = client.Do(req)
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestDefaultReadyToTrip(t *testing.T) {
	assert.False(t, resilience.DefaultReadyToTrip(gobreaker.Counts{Requests: 4, TotalFailures: 4}))
	assert.False(t, resilience.DefaultReadyToTrip(gobreaker.Counts{Requests: 10, TotalFailures: 2}))
	assert.True(t, resilience.DefaultReadyToTrip(gobreaker.Counts{Requests: 5, TotalFailures: 3}))
	assert.True(t, resilience.DefaultReadyToTrip(gobreaker.Counts{Requests: 6, TotalFailures: 3}))
}
