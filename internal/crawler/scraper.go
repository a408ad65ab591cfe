// Package crawler fetches and parses the seaport information website.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"shipscan/internal/config"
	"shipscan/internal/logger"
	"shipscan/pkg/utils"
)

// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

// Scraper handles HTTP fetching with config-driven retry and rate limiting.
type Scraper struct {
	client       *http.Client
	retryPolicy  *config.RetryPolicy
	limiter      *rate.Limiter
	headers      http.Header
	log          *logger.Logger
	bufferSizeKb int
}

// NewScraper creates a new scraper instance with default config.
func NewScraper() *Scraper {
	cfg := config.Default().Scraper

	return NewScraperWithConfig(&cfg, nil)
}

// NewScraperWithConfig creates a scraper from the scraper section of the config.
func NewScraperWithConfig(cfg *config.ScraperConfig, log *logger.Logger) *Scraper {
	if log == nil {
		log = logger.Nop()
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	retry := cfg.Retry

	return &Scraper{
		client: &http.Client{
			Timeout: retry.GetTimeout(),
		},
		retryPolicy:  &retry,
		limiter:      rate.NewLimiter(limit, burst),
		headers:      utils.NewHTTPHelper(cfg.UserAgent).BuildHeaders(nil),
		log:          log,
		bufferSizeKb: cfg.BufferSizeKb,
	}
}

// FetchWithMetrics returns (content, statusCode, duration, error).
func (s *Scraper) FetchWithMetrics(ctx context.Context, url string) (string, int, time.Duration, error) {
	var lastErr error

	var lastStatusCode int

	totalDuration := time.Duration(0)

	for attempt := 1; attempt <= s.retryPolicy.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, s.retryPolicy.GetRetryDelay(attempt)); err != nil {
				return "", lastStatusCode, totalDuration, err
			}
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return "", lastStatusCode, totalDuration, fmt.Errorf("rate limiter: %w", err)
		}

		startTime := time.Now()
		body, status, err := s.fetchOnce(ctx, url)
		totalDuration += time.Since(startTime)
		lastStatusCode = status

		if err == nil {
			return body, status, totalDuration, nil
		}

		lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", attempt, s.retryPolicy.MaxAttempts, err)

		if ctx.Err() != nil {
			return "", lastStatusCode, totalDuration, ctx.Err()
		}

		// Only retry transport errors and specific status codes
		if status != 0 && !isRetryableStatus(status) {
			break
		}

		s.log.Warn("fetch failed", "url", url, "attempt", attempt, "status", status, "error", err)
	}

	return "", lastStatusCode, totalDuration, lastErr
}

// Fetch returns the body of url.
func (s *Scraper) Fetch(ctx context.Context, url string) (string, error) {
	content, _, _, err := s.FetchWithMetrics(ctx, url)

	return content, err
}

func (s *Scraper) fetchOnce(ctx context.Context, url string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = s.headers.Clone()

	resp, err := s.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	// bufferSizeKb is in KB, convert to bytes
	limit := int64(s.bufferSizeKb) * 1024

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), resp.StatusCode, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	// Retry on temporary failures
	switch statusCode {
	case http.StatusServiceUnavailable: // 503
		return true
	case http.StatusGatewayTimeout: // 504
		return true
	case http.StatusTooManyRequests: // 429
		return true
	case http.StatusRequestTimeout: // 408
		return true
	}

	return false
}
