// Package source fetches the initial task list from a remote endpoint or a
// static JSON file.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/felixgeelhaar/taskglitch/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/taskglitch/pkg/observability"
)

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of a response is decoded.
const maxBodyBytes = 10 << 20

// ErrCircuitOpen is returned while the breaker rejects requests.
var ErrCircuitOpen = errors.New("task source unavailable: circuit open")

// BreakerConfig configures the circuit breaker around the HTTP call.
type BreakerConfig struct {
	// MaxRequests allowed through while half-open.
	MaxRequests int
	// Interval clears failure counts while closed. Zero never clears.
	Interval time.Duration
	// Timeout is how long the breaker stays open.
	Timeout time.Duration
	// FailureThreshold consecutive failures trip the breaker.
	FailureThreshold int
}

// DefaultBreakerConfig returns conservative breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 3,
	}
}

// OAuthConfig enables the client-credentials grant.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// Enabled reports whether enough settings are present to request tokens.
func (c OAuthConfig) Enabled() bool {
	return c.ClientID != "" && c.TokenURL != ""
}

// HTTPConfig configures an HTTPSource.
type HTTPConfig struct {
	URL     string
	Timeout time.Duration
	Breaker BreakerConfig
	OAuth   OAuthConfig
}

// HTTPSource GETs a JSON document. Non-2xx responses mean "no data";
// transport failures and undecodable bodies are errors.
type HTTPSource struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[any]
	logger  *slog.Logger
	metrics observability.Metrics
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient replaces the HTTP client. OAuth settings are ignored when
// a client is supplied.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		s.client = client
	}
}

// WithSourceLogger sets the logger.
func WithSourceLogger(logger *slog.Logger) HTTPOption {
	return func(s *HTTPSource) {
		s.logger = logger
	}
}

// WithSourceMetrics sets the metrics sink.
func WithSourceMetrics(metrics observability.Metrics) HTTPOption {
	return func(s *HTTPSource) {
		s.metrics = metrics
	}
}

// NewHTTPSource creates an HTTPSource.
func NewHTTPSource(cfg HTTPConfig, opts ...HTTPOption) (*HTTPSource, error) {
	if cfg.URL == "" {
		return nil, errors.New("source URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Breaker.FailureThreshold <= 0 {
		cfg.Breaker = DefaultBreakerConfig()
	}

	s := &HTTPSource{
		url:     cfg.URL,
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		s.client = &http.Client{Timeout: cfg.Timeout}
		if cfg.OAuth.Enabled() {
			cc := clientcredentials.Config{
				ClientID:     cfg.OAuth.ClientID,
				ClientSecret: cfg.OAuth.ClientSecret,
				TokenURL:     cfg.OAuth.TokenURL,
				Scopes:       cfg.OAuth.Scopes,
			}
			s.client.Transport = &oauthTransport{
				base:   http.DefaultTransport,
				source: cc.TokenSource(context.Background()),
			}
		}
	}

	threshold := convert.IntToUint32Clamped(cfg.Breaker.FailureThreshold)
	s.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "task-source",
		MaxRequests: convert.IntToUint32Clamped(cfg.Breaker.MaxRequests),
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return s, nil
}

// Fetch implements bootstrap.Source.
func (s *HTTPSource) Fetch(ctx context.Context) (any, error) {
	s.metrics.Counter(observability.MetricSourceFetches, 1, observability.T("source", "http"))

	result, err := observability.TimeOperationResult(ctx, nil, s.metrics, "source.fetch", func() (any, error) {
		return s.breaker.Execute(func() (any, error) {
			return s.fetch(ctx)
		})
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		s.metrics.Counter(observability.MetricSourceErrors, 1, observability.T("source", "http"))
		return nil, ErrCircuitOpen
	}
	if err != nil {
		s.metrics.Counter(observability.MetricSourceErrors, 1, observability.T("source", "http"))
		s.logger.WarnContext(ctx, "task source fetch failed", "url", s.url, "error", err)
		return nil, err
	}
	return result, nil
}

func (s *HTTPSource) fetch(ctx context.Context) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.InfoContext(ctx, "task source returned no data", "status", resp.StatusCode)
		return nil, nil
	}

	var data any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return data, nil
}

// BreakerState returns the breaker state name.
func (s *HTTPSource) BreakerState() string {
	return s.breaker.State().String()
}

type oauthTransport struct {
	base   http.RoundTripper
	source oauth2.TokenSource
}

func (t *oauthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.source.Token()
	if err != nil {
		return nil, err
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+token.AccessToken)
	return t.base.RoundTrip(r)
}
