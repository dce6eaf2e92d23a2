// Package github fetches public repository listings for profile pages.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrUserNotFound is returned when GitHub has no account with the requested name.
	ErrUserNotFound = errors.New("no github profile found")
	// ErrUpstream is returned for every other failed call: rate limits, outages, bad bodies.
	ErrUpstream = errors.New("github request failed")
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
	reposPerPage   = "5"
)

// Client calls the GitHub REST API with optional OAuth app credentials.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL, clientID, clientSecret string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: defaultTimeout},
	}
}

// ListRepos returns the five earliest created public repositories of username as the raw
// JSON array GitHub sent.
func (c *Client) ListRepos(ctx context.Context, username string) (json.RawMessage, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUserNotFound
	}

	params := url.Values{}
	params.Set("per_page", reposPerPage)
	params.Set("sort", "created")
	params.Set("direction", "asc")
	endpoint := fmt.Sprintf("%s/users/%s/repos?%s", c.baseURL, url.PathEscape(username), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("User-Agent", "devconnector")
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.clientID != "" && c.clientSecret != "" {
		req.SetBasicAuth(c.clientID, c.clientSecret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrUserNotFound
	default:
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: invalid json body", ErrUpstream)
	}
	return json.RawMessage(body), nil
}
