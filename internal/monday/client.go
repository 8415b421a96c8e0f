package monday

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultAPIURL     = "https://api.monday.com/v2"
	DefaultAPIVersion = "2023-10"
)

// StateStore persists small key/value facts between runs.
type StateStore interface {
	GetState(key string) (string, error)
	SetState(key, value string) error
}

type Client struct {
	apiKey     string
	apiURL     string
	apiVersion string
	boardID    string
	defaultGrp string
	httpClient *http.Client
	state      StateStore
	logger     *slog.Logger
	retryWait  func(attempt int) time.Duration
}

type Options struct {
	APIKey         string
	APIURL         string
	APIVersion     string
	BoardID        string
	DefaultGroupID string
}

func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.APIVersion == "" {
		opts.APIVersion = DefaultAPIVersion
	}
	return &Client{
		apiKey:     opts.APIKey,
		apiURL:     strings.TrimRight(opts.APIURL, "/"),
		apiVersion: opts.APIVersion,
		boardID:    opts.BoardID,
		defaultGrp: opts.DefaultGroupID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:    logger,
		retryWait: backoff,
	}
}

// SetStateStore enables memoising resolved group IDs.
func (c *Client) SetStateStore(s StateStore) {
	c.state = s
}

func (c *Client) BoardID() string {
	return c.boardID
}

func (c *Client) doRequest(ctx context.Context, query string, vars map[string]any) ([]byte, error) {
	data, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}

	c.logger.Debug("monday API request", "query", truncate(compact(query), 120))

	var resp *http.Response
	maxRetries := 3
	requestStart := time.Now()
	for attempt := 0; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", c.apiKey)
		req.Header.Set("API-Version", c.apiVersion)
		req.Header.Set("Content-Type", "application/json")

		resp, err = c.httpClient.Do(req)
		if err != nil {
			if attempt == maxRetries || ctx.Err() != nil {
				c.logger.Error("API request transport error", "error", err, "elapsed", time.Since(requestStart))
				return nil, fmt.Errorf("sending request: %w", err)
			}
			c.logger.Debug("API request transport error, retrying", "attempt", attempt+1, "error", err)
			time.Sleep(c.retryWait(attempt))
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				c.logger.Error("API request failed after retries", "status", resp.StatusCode, "attempts", maxRetries+1, "elapsed", time.Since(requestStart))
				return nil, &APIError{
					StatusCode: resp.StatusCode,
					Message:    fmt.Sprintf("giving up after %d retries", maxRetries),
					Kind:       kindForStatus(resp.StatusCode),
				}
			}
			c.logger.Debug("API request retryable error", "status", resp.StatusCode, "attempt", attempt+1)
			time.Sleep(c.retryWait(attempt))
			continue
		}
		break
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	c.logger.Debug("monday API response", "status", resp.StatusCode, "bytes", len(respBody), "elapsed", time.Since(requestStart))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("API request failed", "status", resp.StatusCode, "response", truncate(string(respBody), 200))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    truncate(strings.TrimSpace(string(respBody)), 200),
			Kind:       kindForStatus(resp.StatusCode),
		}
	}

	return respBody, nil
}

// graphql runs one request and decodes its data member into out.
func graphql[T any](ctx context.Context, c *Client, query string, vars map[string]any) (T, error) {
	var zero T
	body, err := c.doRequest(ctx, query, vars)
	if err != nil {
		return zero, err
	}

	var resp gqlResponse[T]
	if err := json.Unmarshal(body, &resp); err != nil {
		return zero, fmt.Errorf("parsing response: %w", err)
	}
	if resp.ErrorMessage != "" {
		return zero, &APIError{Message: resp.ErrorMessage, Kind: kindForCode(resp.ErrorCode)}
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		var kind error
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
			if code, ok := e.Extensions["code"].(string); ok && kind == nil {
				kind = kindForCode(code)
			}
		}
		return zero, &APIError{Message: strings.Join(msgs, "; "), Kind: kind}
	}
	return resp.Data, nil
}

func backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
