// Package coliru is a client for the Coliru compile-and-run service.
package coliru

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ClientOption defines a function signature for Client's functional options.
type ClientOption func(client *Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = httpClient
	}
}

// Client sends code blocks to the service.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a new Client with the given Config and options.
func NewClient(config *Config, options ...ClientOption) *Client {
	client := &Client{
		config: config,
	}

	for _, opt := range options {
		opt(client)
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: config.Timeout}
	}

	return client
}

type payload struct {
	Cmd string `json:"cmd"`
	Src string `json:"src"`
}

// Compile runs the code block and returns its combined output.
func (c *Client) Compile(ctx context.Context, block *CodeBlock) (string, error) {
	return c.post(ctx, "/compile", block)
}

// Share stores the code block on the service and returns a permanent link to it.
func (c *Client) Share(ctx context.Context, block *CodeBlock) (string, error) {
	id, err := c.post(ctx, "/share", block)
	if err != nil {
		return "", err
	}
	return c.baseURL() + "/a/" + strings.TrimSpace(id), nil
}

func (c *Client) post(ctx context.Context, path string, block *CodeBlock) (string, error) {
	body, err := json.Marshal(&payload{Cmd: block.Command, Src: block.Source})
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s returned status %d", ErrUnavailable, path, resp.StatusCode)
	}

	output, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(output), nil
}

func (c *Client) baseURL() string {
	return strings.TrimRight(c.config.BaseURL, "/")
}
