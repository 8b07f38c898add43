// Package taggerhttp provides a tagger.Tagger and tagger.Lemmatizer backed
// by a REST tagging service.
//
// The service exposes two JSON endpoints:
//
//   - POST /tag    — body {"tokens": [...]}, response {"tags": [{"token": …,
//     "category": …}, …]} with one entry per input token, in order.
//   - POST /lemma  — body {"token": …, "category": …}, response
//     {"lemma": …}.
//
// Connection failures and non-2xx responses are wrapped with
// [tagger.ErrUnavailable] so the metrics engine can degrade the dependent
// metrics instead of failing the session.
package taggerhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fluentlab/fluentlab/pkg/provider/tagger"
)

// Compile-time interface assertions.
var (
	_ tagger.Tagger     = (*Client)(nil)
	_ tagger.Lemmatizer = (*Client)(nil)
)

const (
	defaultTimeout = 10 * time.Second

	tagEndpoint   = "/tag"
	lemmaEndpoint = "/lemma"
)

// Option is a functional option for configuring a [Client].
type Option func(*Client)

// WithTimeout sets the per-request timeout. Default: 10 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying [http.Client]. Useful in tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// Client talks to a REST tagging service. All methods are safe for
// concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the service at baseURL (e.g.
// "http://localhost:8090").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type tagRequest struct {
	Tokens []string `json:"tokens"`
}

type tagResponse struct {
	Tags []tagger.TaggedToken `json:"tags"`
}

// Tag implements [tagger.Tagger].
func (c *Client) Tag(ctx context.Context, tokens []string) ([]tagger.TaggedToken, error) {
	var resp tagResponse
	if err := c.post(ctx, tagEndpoint, tagRequest{Tokens: tokens}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Tags) != len(tokens) {
		return nil, fmt.Errorf("taggerhttp: service returned %d tags for %d tokens", len(resp.Tags), len(tokens))
	}
	return resp.Tags, nil
}

type lemmaRequest struct {
	Token    string          `json:"token"`
	Category tagger.Category `json:"category"`
}

type lemmaResponse struct {
	Lemma string `json:"lemma"`
}

// Lemmatize implements [tagger.Lemmatizer].
func (c *Client) Lemmatize(ctx context.Context, token string, category tagger.Category) (string, error) {
	var resp lemmaResponse
	if err := c.post(ctx, lemmaEndpoint, lemmaRequest{Token: token, Category: category}, &resp); err != nil {
		return "", err
	}
	if resp.Lemma == "" {
		return strings.ToLower(token), nil
	}
	return resp.Lemma, nil
}

// post sends a JSON request and decodes the JSON response. Transport errors
// and non-2xx statuses wrap [tagger.ErrUnavailable].
func (c *Client) post(ctx context.Context, endpoint string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("taggerhttp: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("taggerhttp: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("taggerhttp: %s: %w: %w", endpoint, tagger.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("taggerhttp: %s: %w: status %d", endpoint, tagger.ErrUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("taggerhttp: decode response: %w", err)
	}
	return nil
}
