package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"congress-trade-lab/internal/ingestion"
)

// Default configuration values.
const (
	DefaultTimeout     = 60 * time.Second
	DefaultMaxRetries  = 2
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
	DefaultUserAgent   = "CongressTracker/1.0"

	// PagePlaceholder is replaced by the page number in URL templates.
	PagePlaceholder = "{page}"

	maxBodyBytes = 64 << 20
)

// HTTPSource fetches JSON records from an HTTP endpoint.
// Implements ingestion.Source.
type HTTPSource struct {
	name        string
	urlTemplate string
	client      *http.Client
	userAgent   string
	queryParams url.Values
	headers     http.Header
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	breaker     *gobreaker.CircuitBreaker
}

var _ ingestion.Source = (*HTTPSource)(nil)

// HTTPOption configures HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		s.client = client
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(s *HTTPSource) {
		s.userAgent = ua
	}
}

// WithQueryParam adds a query parameter to every request, e.g. an API key.
func WithQueryParam(key, value string) HTTPOption {
	return func(s *HTTPSource) {
		s.queryParams.Set(key, value)
	}
}

// WithHeader adds a header to every request, e.g. an Authorization token.
func WithHeader(key, value string) HTTPOption {
	return func(s *HTTPSource) {
		s.headers.Set(key, value)
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) HTTPOption {
	return func(s *HTTPSource) {
		s.maxRetries = n
	}
}

// WithRetryDelay sets the initial and maximum retry delay.
func WithRetryDelay(initial, max time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		s.retryDelay = initial
		s.maxDelay = max
	}
}

// WithBreakerSettings overrides the circuit breaker configuration.
// Name is always set to the source name.
func WithBreakerSettings(st gobreaker.Settings) HTTPOption {
	return func(s *HTTPSource) {
		st.Name = s.name
		s.breaker = gobreaker.NewCircuitBreaker(st)
	}
}

// NewHTTPSource creates a source for urlTemplate. When the template has no
// {page} placeholder the endpoint is treated as a single page.
func NewHTTPSource(name, urlTemplate string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		name:        name,
		urlTemplate: urlTemplate,
		client:      &http.Client{Timeout: DefaultTimeout},
		userAgent:   DefaultUserAgent,
		queryParams: url.Values{},
		headers:     http.Header{},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	s.breaker = gobreaker.NewCircuitBreaker(defaultBreakerSettings(name))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultBreakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:     name,
		Interval: 60 * time.Second,
		Timeout:  60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}
}

// Name implements ingestion.Source.
func (s *HTTPSource) Name() string {
	return s.name
}

// Paged reports whether the URL template contains a page placeholder.
func (s *HTTPSource) Paged() bool {
	return strings.Contains(s.urlTemplate, PagePlaceholder)
}

// BreakerState returns the circuit breaker state.
func (s *HTTPSource) BreakerState() gobreaker.State {
	return s.breaker.State()
}

// Fetch implements ingestion.Source.
func (s *HTTPSource) Fetch(ctx context.Context, page int) ([]ingestion.RawRecord, error) {
	if page > 0 && !s.Paged() {
		return nil, nil
	}

	target, err := s.buildURL(page)
	if err != nil {
		return nil, err
	}

	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.get(ctx, target)
	})
	if err != nil {
		return nil, err
	}
	return out.([]ingestion.RawRecord), nil
}

func (s *HTTPSource) buildURL(page int) (string, error) {
	raw := strings.ReplaceAll(s.urlTemplate, PagePlaceholder, strconv.Itoa(page))
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if len(s.queryParams) > 0 {
		q := u.Query()
		for k, vs := range s.queryParams {
			for _, v := range vs {
				q.Set(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// get performs the request with retries and exponential backoff.
func (s *HTTPSource) get(ctx context.Context, target string) ([]ingestion.RawRecord, error) {
	delay := s.retryDelay
	var lastErr error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * s.backoffMult)
			if delay > s.maxDelay {
				delay = s.maxDelay
			}
		}

		records, err := s.do(ctx, target)
		if err == nil {
			return records, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (s *HTTPSource) do(ctx context.Context, target string) ([]ingestion.RawRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)
	for k, vs := range s.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = redactQuery(ue.URL)
		}
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return DecodeRecords(body)
}

// redactQuery drops the query string so credentials never reach logs.
func redactQuery(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i] + "?REDACTED"
	}
	return raw
}
