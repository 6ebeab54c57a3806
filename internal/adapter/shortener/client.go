package shortener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrEmptyResponse indicates the service answered without a link.
var ErrEmptyResponse = errors.New("shortener returned empty response")

// TooManyRequestsError represents rate limiting signal from the shortener.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// HTTPClient shortens links through a text-format shortener API
// (GET <base>?api=<key>&url=<url>&format=text).
type HTTPClient struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates a shortener client with the given timeout.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse shortener url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("shortener url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Shorten returns the short form of link.
func (c *HTTPClient) Shorten(ctx context.Context, link string) (string, error) {
	endpoint := *c.baseURL
	q := endpoint.Query()
	q.Set("api", c.apiKey)
	q.Set("url", link)
	q.Set("format", "text")
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err != nil {
			return "", err
		}
		short := strings.TrimSpace(string(body))
		if short == "" {
			return "", ErrEmptyResponse
		}
		if _, err := url.ParseRequestURI(short); err != nil {
			return "", fmt.Errorf("shortener returned invalid link: %w", err)
		}
		return short, nil
	case http.StatusTooManyRequests:
		return "", TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Error("shortener request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return "", fmt.Errorf("shortener error: %s", resp.Status)
	}
}

// Passthrough is used when no shortener is configured.
type Passthrough struct{}

// Shorten returns link unchanged.
func (Passthrough) Shorten(_ context.Context, link string) (string, error) {
	return link, nil
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
