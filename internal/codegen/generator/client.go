// Package generator calls the upstream model API to turn a prompt into code.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultModel is the generation model requested from the upstream API.
const DefaultModel = "gemini-2.0-flash"

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// ErrUpstream wraps every upstream failure (transport errors, non-2xx
// statuses, empty completions) so callers can map them to a single
// dependency-failure response without inspecting detail.
var ErrUpstream = errors.New("generator: upstream failure")

// Client is a minimal generateContent client. The zero value is not usable;
// construct with NewClient.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithModel overrides the generation model.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithBaseURL points the client at a different API host. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		model:   DefaultModel,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GenerateCode asks the model for code in the given language. The returned
// text is the raw completion; the caller stores it verbatim.
func (c *Client) GenerateCode(ctx context.Context, language, prompt string) (string, error) {
	fullPrompt := fmt.Sprintf(`Generate production-ready code in %s for the following request:
%s

Please provide only the code without any explanations. Ensure the code follows best practices, includes proper error handling, and is well-documented.`, language, prompt)

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: fullPrompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little of the body for the log line, never the whole thing.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, snippet)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}

	text := ""
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			text += p.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUpstream)
	}
	return text, nil
}
