// Package remote talks to a quickten score server over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/quickten/internal/model"
)

const defaultTimeout = 10 * time.Second

// ErrNotFound is returned for a 404 response.
var ErrNotFound = errors.New("not found")

// APIError carries a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client implements the score store contract against the HTTP API.
type Client struct {
	base *url.URL
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// New parses baseURL and returns a client.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("server url is empty")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url scheme %q", u.Scheme)
	}
	c := &Client{base: u, http: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type commitRequest struct {
	Score int `json:"score"`
}

type commitResponse struct {
	Updated bool `json:"updated"`
}

type bestResponse struct {
	PlayerID  string `json:"playerId"`
	BestScore int    `json:"bestScore"`
}

type rankingResponse struct {
	Entries []model.RankingEntry `json:"entries"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// CommitIfBest asks the server to store score. The server stamps the record
// with its own clock, so now is not sent.
func (c *Client) CommitIfBest(ctx context.Context, playerID string, score int, _ time.Time) (bool, error) {
	var resp commitResponse
	if err := c.do(ctx, http.MethodPut, scorePath(playerID), nil, commitRequest{Score: score}, &resp); err != nil {
		return false, err
	}
	return resp.Updated, nil
}

// BestScore fetches the stored best for playerID.
func (c *Client) BestScore(ctx context.Context, playerID string) (int, bool, error) {
	var resp bestResponse
	err := c.do(ctx, http.MethodGet, scorePath(playerID), nil, nil, &resp)
	if errors.Is(err, ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return resp.BestScore, true, nil
}

// TopScores fetches the leaderboard.
func (c *Client) TopScores(ctx context.Context, limit int) ([]model.RankingEntry, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	var resp rankingResponse
	if err := c.do(ctx, http.MethodGet, []string{"v1", "ranking"}, q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// Ping checks the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, []string{"healthz"}, nil, nil, nil)
}

// Close is a no-op; it lets the client stand in for closable stores.
func (c *Client) Close() error {
	return nil
}

func scorePath(playerID string) []string {
	return []string{"v1", "scores", playerID}
}

func (c *Client) do(ctx context.Context, method string, path []string, query url.Values, body, out any) error {
	u := c.base.JoinPath(path...)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr errorResponse
		// Proxies may answer with a non-JSON body.
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&apiErr)
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
