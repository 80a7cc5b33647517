package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultAPIVersion      = "2025-10"
	DefaultMaxAttempts     = 3
	DefaultBaseWait        = time.Second
	DefaultMaxThrottleWait = 10 * time.Second
	DefaultTimeout         = 30 * time.Second

	throttledCode = "THROTTLED"
)

// Config holds Admin API connection settings
type Config struct {
	Store             string  // Shop domain or name (e.g. "livid" or "livid.myshopify.com")
	AccessToken       string  // Admin API access token
	AccessTokenEnv    string  // Environment variable holding the token
	APIVersion        string  // Admin API version
	Endpoint          string  // Full GraphQL URL, overrides Store/APIVersion when set
	RequestsPerSecond float64 // Client-side request rate, 0 = unlimited
	MaxAttempts       int
	BaseWait          time.Duration
	MaxThrottleWait   time.Duration
	Timeout           time.Duration
	HTTPClient        *http.Client
	Logger            logrus.FieldLogger
}

// Client is a GraphQL client for the Shopify Admin API with retry and throttling
type Client struct {
	config   Config
	http     *http.Client
	limiter  *rate.Limiter
	endpoint string
	log      logrus.FieldLogger

	// wait blocks for d or until ctx is done
	wait func(ctx context.Context, d time.Duration) error

	modelDefMu sync.Mutex
	modelDefOK bool
}

// NewClient creates a client; call Connect before use
func NewClient(cfg Config) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BaseWait <= 0 {
		cfg.BaseWait = DefaultBaseWait
	}
	if cfg.MaxThrottleWait <= 0 {
		cfg.MaxThrottleWait = DefaultMaxThrottleWait
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Client{
		config:  cfg,
		http:    httpClient,
		limiter: rate.NewLimiter(limit, 1),
		log:     log.WithField("component", "shopify"),
		wait:    sleepContext,
	}
}

// Connect resolves credentials and the endpoint URL.
// It does not issue a request; use Test for that.
func (c *Client) Connect(ctx context.Context) error {
	token := c.config.AccessToken
	if token == "" && c.config.AccessTokenEnv != "" {
		token = os.Getenv(c.config.AccessTokenEnv)
	}
	if token == "" {
		return fmt.Errorf("shopify access token not configured")
	}
	c.config.AccessToken = token

	if c.config.Endpoint != "" {
		c.endpoint = c.config.Endpoint
		return nil
	}

	store := NormalizeStore(c.config.Store)
	if store == "" {
		return fmt.Errorf("shopify store not configured")
	}
	c.endpoint = fmt.Sprintf("https://%s/admin/api/%s/graphql.json", store, c.config.APIVersion)
	return nil
}

// Endpoint returns the resolved GraphQL URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Test verifies the credentials by reading the shop name
func (c *Client) Test(ctx context.Context) (string, error) {
	var out struct {
		Shop struct {
			Name string `json:"name"`
		} `json:"shop"`
	}
	if err := c.Do(ctx, shopQuery, nil, &out); err != nil {
		return "", fmt.Errorf("failed to connect to Shopify: %w", err)
	}
	return out.Shop.Name, nil
}

// NormalizeStore strips any protocol and trailing slash from a store URL
// and expands a bare shop name to its myshopify.com domain.
func NormalizeStore(store string) string {
	store = strings.TrimSpace(store)
	store = strings.TrimPrefix(store, "https://")
	store = strings.TrimPrefix(store, "http://")
	store = strings.TrimRight(store, "/")
	if store != "" && !strings.Contains(store, ".") {
		store += ".myshopify.com"
	}
	return store
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data       json.RawMessage `json:"data"`
	Errors     []graphQLErr    `json:"errors"`
	Extensions struct {
		Cost *struct {
			ThrottleStatus *throttleStatus `json:"throttleStatus"`
		} `json:"cost"`
	} `json:"extensions"`
}

type graphQLErr struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type throttleStatus struct {
	MaximumAvailable   float64 `json:"maximumAvailable"`
	CurrentlyAvailable float64 `json:"currentlyAvailable"`
	RestoreRate        float64 `json:"restoreRate"`
}

// Do runs a GraphQL operation and decodes its data into out.
//
// HTTP 429 waits for Retry-After (or a linear fallback), 5xx backs off
// exponentially, and THROTTLED errors wait for the cost bucket to refill.
// Other failures return immediately.
func (c *Client) Do(ctx context.Context, query string, variables map[string]any, out any) error {
	if c.endpoint == "" {
		if err := c.Connect(ctx); err != nil {
			return err
		}
	}

	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	serverBackoff := backoff.NewExponentialBackOff()
	serverBackoff.InitialInterval = c.config.BaseWait
	serverBackoff.RandomizationFactor = 0
	serverBackoff.Multiplier = 2
	serverBackoff.MaxElapsedTime = 0
	serverBackoff.Reset()

	var lastErr error
	for attempt := 0; attempt < c.config.MaxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		wait, err := c.attempt(ctx, body, out, attempt, serverBackoff)
		if err == nil {
			return nil
		}
		lastErr = err
		if wait < 0 {
			return err
		}
		if attempt == c.config.MaxAttempts-1 {
			break
		}

		c.log.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"wait":    wait.String(),
		}).Warnf("retrying Shopify request: %v", err)

		if err := c.wait(ctx, wait); err != nil {
			return err
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("max retries exceeded")
	}
	return fmt.Errorf("shopify request failed after %d attempts: %w", c.config.MaxAttempts, lastErr)
}

// attempt performs one round trip. A negative wait means the error is terminal.
func (c *Client) attempt(ctx context.Context, body []byte, out any, attempt int, serverBackoff backoff.BackOff) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return -1, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.config.AccessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return -1, fmt.Errorf("failed to reach Shopify: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return -1, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		wait := parseRetryAfter(resp.Header.Get("Retry-After"))
		if wait <= 0 {
			wait = c.config.BaseWait * time.Duration(attempt+1)
		}
		return wait, &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
	case resp.StatusCode >= 500:
		return serverBackoff.NextBackOff(), &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Body: truncate(string(respBody), 200)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return -1, &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Body: truncate(string(respBody), 200)}
	}

	var gql graphQLResponse
	if err := json.Unmarshal(respBody, &gql); err != nil {
		return -1, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(gql.Errors) > 0 {
		messages := make([]string, 0, len(gql.Errors))
		throttled := false
		for _, e := range gql.Errors {
			messages = append(messages, e.Message)
			if e.Extensions.Code == throttledCode {
				throttled = true
			}
		}
		if !throttled {
			return -1, &GraphQLError{Messages: messages}
		}

		wait := c.config.BaseWait * time.Duration(attempt+1)
		if gql.Extensions.Cost != nil && gql.Extensions.Cost.ThrottleStatus != nil {
			wait = throttleWait(*gql.Extensions.Cost.ThrottleStatus)
		}
		if wait > c.config.MaxThrottleWait {
			wait = c.config.MaxThrottleWait
		}
		return wait, &GraphQLError{Messages: messages}
	}

	if out != nil && len(gql.Data) > 0 {
		if err := json.Unmarshal(gql.Data, out); err != nil {
			return -1, fmt.Errorf("failed to decode data: %w", err)
		}
	}
	return 0, nil
}

// throttleWait is the time needed for the cost bucket to refill completely
func throttleWait(ts throttleStatus) time.Duration {
	if ts.RestoreRate <= 0 {
		return 0
	}
	deficit := ts.MaximumAvailable - ts.CurrentlyAvailable
	if deficit <= 0 {
		return 0
	}
	return time.Duration(deficit / ts.RestoreRate * float64(time.Second))
}

// parseRetryAfter reads a Retry-After header given in (fractional) seconds
// or as an HTTP date.
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(seconds * float64(time.Second))
	}
	if t, err := http.ParseTime(value); err == nil {
		return time.Until(t)
	}
	return 0
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
