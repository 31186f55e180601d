// Package transport is the HTTP implementation of the mutation and fetch
// interfaces.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const maxErrorBody = 4 << 10

// Client talks to the social backend's REST API
type Client struct {
	baseURL  string
	token    string
	pageSize int
	http     HTTPClient
}

func New(baseURL, token string, pageSize int, httpClient HTTPClient) *Client {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		pageSize: pageSize,
		http:     httpClient,
	}
}

// do sends one request. out may be nil for ack-only endpoints; an empty
// response body leaves out untouched.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "feedsync")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode %s %s: %w", method, path, err)
	}
	return nil
}

func pageQuery(page, size int) url.Values {
	q := url.Values{}
	q.Set("page", fmt.Sprint(page))
	if size > 0 {
		q.Set("size", fmt.Sprint(size))
	}
	return q
}

func seg(id string) string {
	return url.PathEscape(id)
}
