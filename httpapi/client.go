package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pkt.systems/blackboard/internal/version"
	"pkt.systems/blackboard/schema"
)

// Client talks to a running control plane.
type Client struct {
	base string
	http *http.Client
}

// NewClient builds a client for addr (host:port or a full URL).
func NewClient(addr string) *Client {
	base := strings.TrimRight(strings.TrimSpace(addr), "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{base: base, http: &http.Client{Timeout: 10 * time.Second}}
}

// Ping checks that an instance is listening.
func (c *Client) Ping(ctx context.Context) error {
	body, err := c.do(ctx, http.MethodGet, "/ping", nil, nil)
	if err != nil {
		return err
	}
	if body != "pong" {
		return fmt.Errorf("unexpected ping response %q", body)
	}
	return nil
}

// Buffer returns the active tab text.
func (c *Client) Buffer(ctx context.Context) (string, error) {
	return c.do(ctx, http.MethodGet, "/buffer", nil, nil)
}

// Write appends to or replaces the active tab text.
func (c *Client) Write(ctx context.Context, text io.Reader, mode schema.WriteMode) error {
	header := http.Header{}
	if mode == schema.WriteReplace {
		header.Set("X-Mode", string(schema.WriteReplace))
	}
	_, err := c.do(ctx, http.MethodPost, "/buffer", text, header)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, header http.Header) (string, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return "", err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("User-Agent", version.UserAgent())
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("blackboard not reachable at %s: %w", c.base, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusServiceUnavailable {
			return "", fmt.Errorf("%w: %s", schema.ErrWindowUnavailable, strings.TrimSpace(string(data)))
		}
		return "", fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(data)))
	}
	return string(data), nil
}
