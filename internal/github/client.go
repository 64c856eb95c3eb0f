package github

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

// DefaultAPIURL is the GitHub REST v3 endpoint. GitHub Enterprise installs
// use <host>/api/v3 instead.
const DefaultAPIURL = "https://api.github.com"

// RateLimit holds the rate limit snapshot from GitHub API response headers.
// Unknown values are -1.
type RateLimit struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Used      int       `json:"used"`
	Reset     time.Time `json:"reset"`
}

// parseRateLimit reads the x-ratelimit-* headers from a response.
func parseRateLimit(headers http.Header) RateLimit {
	rl := RateLimit{Limit: -1, Remaining: -1, Used: -1}
	if val, ok := parseHeaderInt(headers, "x-ratelimit-limit"); ok {
		rl.Limit = val
	}
	if val, ok := parseHeaderInt(headers, "x-ratelimit-remaining"); ok {
		rl.Remaining = val
	}
	if val, ok := parseHeaderInt(headers, "x-ratelimit-used"); ok {
		rl.Used = val
	}
	if reset := headers.Get("x-ratelimit-reset"); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil {
			rl.Reset = time.Unix(val, 0)
		}
	}
	return rl
}

func parseHeaderInt(headers http.Header, key string) (int, bool) {
	val := headers.Get(key)
	if val == "" {
		return 0, false
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Client issues authenticated requests against the GitHub search API.
// All clients in one process share a single Guard so the burst detection
// sees every outgoing call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	guard      *Guard
}

var processGuard = NewGuard(nil)

// NewClient creates a Client for the given API base URL and token.
// An empty baseURL selects the public GitHub endpoint.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Client{
		baseURL:    baseURL,
		httpClient: oauth2.NewClient(context.Background(), ts),
		guard:      processGuard,
	}
}

// WithGuard replaces the shared burst guard. Tests use this to inject a
// guard with a controlled clock.
func (c *Client) WithGuard(g *Guard) *Client {
	c.guard = g
	return c
}
