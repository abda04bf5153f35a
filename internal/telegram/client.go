// Package telegram sends Markdown messages to a chat through the Bot API.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultAPIURL is the public Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

// ParseMode is the formatting mode of every message sent.
const ParseMode = "Markdown"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Error represents a failed sendMessage call. StatusCode is 0 when the
// request never got a response.
type Error struct {
	StatusCode  int
	Description string
	Cause       error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode == 0 && e.Cause != nil:
		return fmt.Sprintf("telegram request failed: %s: %v", e.Description, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("telegram returned status %d: %s: %v", e.StatusCode, e.Description, e.Cause)
	default:
		return fmt.Sprintf("telegram returned status %d: %s", e.StatusCode, e.Description)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the client.
type Options struct {
	APIURL     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// DefaultOptions returns sensible defaults for the client.
func DefaultOptions() *Options {
	return &Options{
		APIURL:  DefaultAPIURL,
		Timeout: DefaultTimeout,
	}
}

// Client posts messages to one chat.
type Client struct {
	endpoint   string
	chatID     string
	httpClient *http.Client
}

// New creates a client for the given bot token and chat.
func New(token, chatID string, opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	apiURL := strings.TrimRight(opts.APIURL, "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		endpoint:   fmt.Sprintf("%s/bot%s/sendMessage", apiURL, token),
		chatID:     chatID,
		httpClient: httpClient,
	}
}

// apiResponse is the envelope of every Bot API reply.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
}

// SendMessage posts text to the configured chat with Markdown parsing.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	form := url.Values{}
	form.Set("chat_id", c.chatID)
	form.Set("text", text)
	form.Set("parse_mode", ParseMode)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return &Error{Description: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The token is part of the URL; drop it from the error
		if urlErr, ok := err.(*url.Error); ok {
			err = urlErr.Err
		}
		return &Error{Description: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &Error{StatusCode: resp.StatusCode, Description: "failed to read response body", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{StatusCode: resp.StatusCode, Description: describe(resp.StatusCode, body)}
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err == nil && !parsed.OK && parsed.Description != "" {
		return &Error{StatusCode: resp.StatusCode, Description: parsed.Description}
	}
	return nil
}

func describe(status int, body []byte) string {
	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Description != "" {
		return parsed.Description
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return http.StatusText(status)
}
