package portal

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"iitb-internet/internal/metrics"
	"iitb-internet/internal/model"
)

// Result is a completed exchange with the portal.
type Result struct {
	StatusCode int
	FinalURL   string
	Body       []byte
}

// Text returns the body as a string. The portal serves UTF-8.
func (r *Result) Text() (string, error) {
	if !utf8.Valid(r.Body) {
		return "", errors.Wrapf(model.ErrMalformedData, "undecodable body from %s", r.FinalURL)
	}
	return string(r.Body), nil
}

type Client struct {
	*http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient returns a client that follows redirects. A positive interval
// spaces consecutive requests.
func NewClient(interval time.Duration, logger *zap.Logger) *Client {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Client{
		Client:  &http.Client{},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.Named("client"),
	}
}

// Fetch issues a GET, or a form POST when form is non-nil.
func (c *Client) Fetch(ctx context.Context, rawURL string, form url.Values) (*Result, error) {
	method := http.MethodGet
	var body io.Reader
	if form != nil {
		method = http.MethodPost
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s request for %s", method, rawURL)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "wait for request slot")
	}

	start := time.Now()
	resp, err := c.Do(req)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Requests.WithLabelValues(method, "error").Inc()
		return nil, errors.Wrapf(model.ErrConnection, "connection to %s failed: %v", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.Requests.WithLabelValues(method, "status").Inc()
		return nil, errors.Wrapf(model.ErrConnection, "received response code %d, connection to %s failed",
			resp.StatusCode, rawURL)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.Requests.WithLabelValues(method, "error").Inc()
		return nil, errors.Wrapf(model.ErrConnection, "read body from %s: %v", rawURL, err)
	}
	metrics.Requests.WithLabelValues(method, "ok").Inc()

	finalURL := resp.Request.URL.String()
	c.logger.Debug("Fetched portal page",
		zap.String("method", method),
		zap.String("url", rawURL),
		zap.String("final_url", finalURL),
		zap.Int("bytes", len(data)),
	)
	return &Result{StatusCode: resp.StatusCode, FinalURL: finalURL, Body: data}, nil
}
