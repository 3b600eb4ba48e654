package bankfeed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fintrackhq/fintrack-backend/internal/middleware"
	"github.com/fintrackhq/fintrack-backend/internal/platform/config"
)

// Client talks to the external transaction aggregation service. All calls are
// POSTs with JSON bodies carrying the client credentials, mirroring the
// provider's API shape.
type Client struct {
	baseURL      string
	clientID     string
	secret       string
	pageSize     int
	maxRetries   int
	retryBackoff time.Duration
	httpClient   *http.Client
}

// NewClient builds a feed client from configuration.
func NewClient(cfg config.BankfeedConfig) *Client {
	return &Client{
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		secret:       cfg.Secret,
		pageSize:     cfg.PageSize,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
	}
}

// PageSize reports the configured page size for sync requests.
func (c *Client) PageSize() int {
	return c.pageSize
}

// SyncTransactions fetches one page of the transaction stream for an item.
// Passing a nil cursor reads the stream from the beginning.
func (c *Client) SyncTransactions(ctx context.Context, accessToken string, cursor *string) (*SyncResponse, error) {
	req := SyncRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		AccessToken: accessToken,
		Cursor:      cursor,
		Count:       c.pageSize,
	}
	var resp SyncResponse
	if err := c.post(ctx, "/transactions/sync", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExchangePublicToken swaps a one-time public token for durable item credentials.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResponse, error) {
	req := ExchangeRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		PublicToken: publicToken,
	}
	var resp ExchangeResponse
	if err := c.post(ctx, "/item/public_token/exchange", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAccounts fetches the accounts of a linked item.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) (*AccountsResponse, error) {
	req := AccountsRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		AccessToken: accessToken,
	}
	var resp AccountsResponse
	if err := c.post(ctx, "/accounts/get", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// post sends one JSON request with bounded retries on transport errors and
// 5xx responses. 4xx responses are terminal.
func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request for %s: %w", path, err)
	}

	logger := middleware.GetLoggerFromCtx(ctx)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			logger.Warn("retrying feed request", "path", path, "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryBackoff * time.Duration(attempt)):
			}
		}

		lastErr = c.doOnce(ctx, path, payload, out)
		if lastErr == nil {
			return nil
		}
		var re *retryableError
		if !errors.As(lastErr, &re) {
			return lastErr
		}
	}
	return fmt.Errorf("feed request %s failed after %d retries: %w", path, c.maxRetries, lastErr)
}

func (c *Client) doOnce(ctx context.Context, path string, payload []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &retryableError{err: fmt.Errorf("feed request %s failed: %w", path, err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &retryableError{err: fmt.Errorf("failed to read feed response for %s: %w", path, err)}
	}

	if resp.StatusCode >= 500 {
		return &retryableError{err: fmt.Errorf("feed returned %d for %s", resp.StatusCode, path)}
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.ErrorCode != "" {
			return fmt.Errorf("feed returned %d for %s: %s (%s)", resp.StatusCode, path, apiErr.ErrorMessage, apiErr.ErrorCode)
		}
		return fmt.Errorf("feed returned %d for %s", resp.StatusCode, path)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode feed response for %s: %w", path, err)
	}
	return nil
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }
