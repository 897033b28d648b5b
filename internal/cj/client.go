package cj

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/glowmart/cjfulfill/internal/config"
	"github.com/glowmart/cjfulfill/pkg/errors"
)

const (
	defaultMaxRetries = 3
	defaultBackoff    = 1 * time.Second

	// envelopeSuccessCode is the body-level success code the CJ API uses
	envelopeSuccessCode = 200
)

// Client is the authenticated CJ API call wrapper. Every call obtains a
// token from the provider (cheap while cached), checks both the HTTP status
// and the body-level envelope, and retries failures with exponential backoff.
type Client struct {
	baseURL    string
	tokens     *TokenProvider
	httpClient *http.Client
	logger     *zap.Logger

	// sleep is swapped out in tests to observe the backoff schedule
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a CJ API client on top of a token provider
func NewClient(cfg config.CJConfig, tokens *TokenProvider, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		sleep:      sleepContext,
	}
}

// CallOptions tune the retry behavior of a single call
type CallOptions struct {
	MaxRetries int           // total attempts, default 3
	Backoff    time.Duration // first delay, doubled each attempt, default 1s
}

// envelope is the wrapper every CJ response arrives in. A 2xx response with
// result != true or code != 200 is still a failure.
type envelope struct {
	Code    int             `json:"code"`
	Result  bool            `json:"result"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do executes one authenticated call against the CJ API and unmarshals the
// envelope's data field into out. Failed attempts sleep backoff*2^(attempt-1)
// before retrying; the last failure is surfaced as ErrSupplierAPI.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body interface{}, out interface{}, opts CallOptions) error {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}

	var lastErr *errors.ErrSupplierAPI

	for attempt := 1; attempt <= opts.MaxRetries; attempt++ {
		err := c.attempt(ctx, method, endpoint, query, body, out)
		if err == nil {
			return nil
		}

		// Missing credentials can never succeed on retry.
		if cfgErr, ok := err.(*errors.ErrConfiguration); ok {
			return cfgErr
		}

		switch e := err.(type) {
		case *errors.ErrSupplierAPI:
			lastErr = e
		case *errors.ErrUpstreamAuth:
			// A failed grant counts as a failed attempt: the auth service
			// may be transiently down, so keep it in the retry loop.
			lastErr = &errors.ErrSupplierAPI{HTTPStatus: http.StatusUnauthorized, Message: e.Error()}
		default:
			lastErr = &errors.ErrSupplierAPI{Message: e.Error()}
		}

		c.logger.Warn("CJ API call failed",
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", opts.MaxRetries),
			zap.Error(err),
		)

		if attempt < opts.MaxRetries {
			delay := opts.Backoff * (1 << (attempt - 1))
			if err := c.sleep(ctx, delay); err != nil {
				return err
			}
		}
	}

	return lastErr
}

func (c *Client) attempt(ctx context.Context, method, endpoint string, query url.Values, body interface{}, out interface{}) error {
	// Token is re-fetched each attempt so a mid-flight expiry self-heals.
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}

	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %s: %w", endpoint, err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("CJ-Access-Token", token.Value)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &errors.ErrSupplierAPI{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errors.ErrSupplierAPI{HTTPStatus: resp.StatusCode, Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Token may have been revoked upstream; drop it so the next
		// attempt performs a fresh grant.
		c.tokens.ClearCache()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &errors.ErrSupplierAPI{HTTPStatus: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return &errors.ErrSupplierAPI{HTTPStatus: resp.StatusCode, Message: fmt.Sprintf("malformed response: %v", err)}
	}

	if !env.Result || env.Code != envelopeSuccessCode {
		return &errors.ErrSupplierAPI{HTTPStatus: resp.StatusCode, Code: env.Code, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &errors.ErrSupplierAPI{HTTPStatus: resp.StatusCode, Code: env.Code, Message: fmt.Sprintf("malformed response data: %v", err)}
		}
	}

	return nil
}

// sleepContext sleeps for d unless the context is cancelled first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
