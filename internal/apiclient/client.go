// Package apiclient sends contact form submissions to the website's backend.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gitlab.com/dirk.krummacker/static-website/pkg/model"
)

// ContactPath is appended to the base URL for submissions.
const ContactPath = "/contact"

// maxResponseBody bounds how much of a response is read to look for an error message.
const maxResponseBody = 64 << 10

// StatusError is returned when the backend answers with a status outside 2xx, or with a 2xx
// whose body still reports an error.
type StatusError struct {
	StatusCode int
	// Message is the "error" field of the response body, if there was one.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API Error: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API Error: %d", e.StatusCode)
}

// Response is the body the backend returns for an accepted submission.
type Response struct {
	Message string `json:"message"`
	Id      string `json:"id"`
	Error   string `json:"error"`
}

// Client posts submissions to <baseURL>/contact.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New returns a client for the backend at baseURL, e.g.
// "https://abc123.execute-api.us-east-1.amazonaws.com/dev".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL submissions are posted to.
func (c *Client) Endpoint() string {
	return c.baseURL + ContactPath
}

// Submit posts the submission as JSON. A non-2xx answer, or a 2xx answer with a non-empty
// "error" field, yields a *StatusError; a transport problem the wrapped error of the HTTP
// client. Exactly one request is made per call.
func (c *Client) Submit(ctx context.Context, s model.Submission) (*Response, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("could not marshal submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making http request: %w", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	var parsed Response
	// Bodies that are not JSON are tolerated.
	_ = json.Unmarshal(resBody, &parsed)

	if res.StatusCode < 200 || res.StatusCode > 299 || parsed.Error != "" {
		return nil, &StatusError{StatusCode: res.StatusCode, Message: parsed.Error}
	}
	return &parsed, nil
}
