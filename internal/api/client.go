package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TokenSource returns the current bearer token, or "" when anonymous. The
// client reads it on every request so a login/logout in the session layer
// takes effect immediately without rebuilding the client.
type TokenSource func() string

// Client talks to the waste-management backend.
type Client struct {
	baseURL    string
	token      TokenSource
	httpClient *http.Client
}

// NewClient creates a backend client. baseURL must not end with a slash.
func NewClient(baseURL string, token TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetTimeout overrides the default per-request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.httpClient.Timeout = d
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// do performs a request with the bearer token attached and maps non-2xx
// responses to the error taxonomy.
func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte, headers map[string]string) (*http.Response, error) {
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	logRequest(method, url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logError(method+" "+path, err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	logResponse(method, url, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

// decodeError turns an error response into the matching typed error.
func decodeError(resp *http.Response) error {
	var eb errorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(data, &eb)
	if eb.Message == "" {
		eb.Message = fmt.Sprintf("request failed: status %d", resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Message: eb.Message}
	case http.StatusConflict:
		return &ConflictError{Message: eb.Message}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &ValidationError{Message: eb.Message, Fields: eb.Errors}
	default:
		return fmt.Errorf("%s (status %d)", eb.Message, resp.StatusCode)
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, "", nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeInto(resp, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, in, out)
}

func (c *Client) putJSON(ctx context.Context, path string, in, out any) error {
	return c.sendJSON(ctx, http.MethodPut, path, in, out)
}

func (c *Client) deleteJSON(ctx context.Context, path string) error {
	resp, err := c.do(ctx, http.MethodDelete, path, "", nil, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = data
		contentType = "application/json"
	}

	resp, err := c.do(ctx, method, path, contentType, body, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeInto(resp, out)
}

func decodeInto(resp *http.Response, out any) error {
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// PostRaw delivers a pre-serialized body exactly as given. The offline queue
// uses it for replay so a cached submission goes out with the same method,
// payload and content type it was enqueued with. Failures come back as
// *SubmissionError.
func (c *Client) PostRaw(ctx context.Context, endpoint, contentType string, body []byte, headers map[string]string) error {
	resp, err := c.do(ctx, http.MethodPost, endpoint, contentType, body, headers)
	if err != nil {
		if se, ok := statusOf(err); ok {
			return &SubmissionError{Endpoint: endpoint, StatusCode: se, Err: err}
		}
		return &SubmissionError{Endpoint: endpoint, Err: err}
	}
	resp.Body.Close()
	return nil
}

// statusOf extracts an HTTP status from a typed backend error, if any.
func statusOf(err error) (int, bool) {
	switch err.(type) {
	case *AuthError:
		return http.StatusUnauthorized, true
	case *ConflictError:
		return http.StatusConflict, true
	case *ValidationError:
		return http.StatusBadRequest, true
	}
	return 0, false
}
