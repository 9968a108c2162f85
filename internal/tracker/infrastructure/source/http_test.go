package source_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/taskglitch/internal/tracker/infrastructure/source"
	"github.com/felixgeelhaar/taskglitch/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSource(t *testing.T, url string, opts ...source.HTTPOption) *source.HTTPSource {
	t.Helper()
	opts = append([]source.HTTPOption{source.WithSourceLogger(observability.DiscardLogger())}, opts...)
	s, err := source.NewHTTPSource(source.HTTPConfig{
		URL:     url,
		Timeout: time.Second,
		Breaker: source.BreakerConfig{
			MaxRequests:      1,
			Timeout:          time.Minute,
			FailureThreshold: 2,
		},
	}, opts...)
	require.NoError(t, err)
	return s
}

func TestHTTPSource_Fetch(t *testing.T) {
	t.Run("decodes JSON array", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			_, _ = w.Write([]byte(`[{"id":"a","title":"Call"}]`))
		}))
		defer srv.Close()

		metrics := observability.NewInMemoryMetrics()
		data, err := newSource(t, srv.URL, source.WithSourceMetrics(metrics)).Fetch(context.Background())
		require.NoError(t, err)

		records, ok := data.([]any)
		require.True(t, ok)
		assert.Len(t, records, 1)
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricSourceFetches, observability.T("source", "http")))
	})

	t.Run("non-OK means no data", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		data, err := newSource(t, srv.URL).Fetch(context.Background())
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("bad body is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		}))
		defer srv.Close()

		_, err := newSource(t, srv.URL).Fetch(context.Background())
		assert.Error(t, err)
	})

	t.Run("transport failure is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		metrics := observability.NewInMemoryMetrics()
		_, err := newSource(t, url, source.WithSourceMetrics(metrics)).Fetch(context.Background())
		assert.Error(t, err)
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricSourceErrors, observability.T("source", "http")))
	})
}

func TestHTTPSource_CircuitBreaker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`garbage`))
	}))
	defer srv.Close()

	s := newSource(t, srv.URL)
	assert.Equal(t, "closed", s.BreakerState())

	for range 2 {
		_, err := s.Fetch(context.Background())
		require.Error(t, err)
	}
	assert.Equal(t, "open", s.BreakerState())

	_, err := s.Fetch(context.Background())
	assert.ErrorIs(t, err, source.ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPSource_OAuth(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	}))
	defer tokenSrv.Close()

	var auth string
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer apiSrv.Close()

	s, err := source.NewHTTPSource(source.HTTPConfig{
		URL: apiSrv.URL,
		OAuth: source.OAuthConfig{
			ClientID:     "client",
			ClientSecret: "secret",
			TokenURL:     tokenSrv.URL,
		},
	}, source.WithSourceLogger(observability.DiscardLogger()))
	require.NoError(t, err)

	_, err = s.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", auth)
}

func TestNewHTTPSource_RequiresURL(t *testing.T) {
	_, err := source.NewHTTPSource(source.HTTPConfig{})
	assert.Error(t, err)
}
