// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bureau-foundation/huddle/lib/netutil"
)

// DefaultMaxBytes bounds a response body when Request.MaxBytes is
// zero.
const DefaultMaxBytes int64 = 32 << 20

// Request describes one authenticated fetch.
type Request struct {
	// Path is appended to the client's base URL.
	Path string
	// Credential is sent as a bearer token. Empty sends no
	// Authorization header.
	Credential string
	// Timeout bounds the whole request including the body read. Zero
	// leaves only the caller's context deadline.
	Timeout time.Duration
	// MaxBytes bounds the response body. Zero means DefaultMaxBytes.
	MaxBytes int64
}

// Response is a successful fetch.
type Response struct {
	Body        []byte
	ContentType string
}

// Requester performs authenticated byte fetches. Every failure is an
// *Error.
type Requester interface {
	RequestBytes(ctx context.Context, request Request) (Response, error)
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// BaseURL is the API origin, e.g. "https://chat.example.com/api".
	BaseURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient
	// is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Client is an HTTP Requester.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient validates the configuration and returns a Client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("api: BaseURL is required")
	}
	parsed, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("api: invalid BaseURL %q: %w", config.BaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("api: BaseURL %q must be http or https", config.BaseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// RequestBytes performs a GET of request.Path and returns the body.
// A declared Content-Length over the limit fails before any body is
// read; an undeclared body is read until one byte past the limit.
func (c *Client) RequestBytes(ctx context.Context, request Request) (Response, error) {
	if request.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, request.Timeout)
		defer cancel()
	}
	maxBytes := request.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	path := request.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return Response{}, &Error{Kind: KindNetwork, Path: request.Path, Err: err}
	}
	if request.Credential != "" {
		httpRequest.Header.Set("Authorization", "Bearer "+request.Credential)
	}

	response, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return Response{}, &Error{Kind: transportKind(err), Path: request.Path, Err: err}
	}
	defer response.Body.Close()

	switch {
	case response.StatusCode == http.StatusUnauthorized:
		return Response{}, &Error{Kind: KindAuthExpired, StatusCode: response.StatusCode, Path: request.Path}
	case response.StatusCode < 200 || response.StatusCode >= 300:
		c.logger.Debug("api request failed",
			"path", request.Path,
			"status", response.StatusCode,
			"body", netutil.ErrorBody(response.Body),
		)
		return Response{}, &Error{Kind: KindServer, StatusCode: response.StatusCode, Path: request.Path}
	}

	if response.ContentLength > maxBytes {
		return Response{}, &Error{
			Kind: KindOversized,
			Path: request.Path,
			Err:  fmt.Errorf("declared %d bytes, limit %d", response.ContentLength, maxBytes),
		}
	}
	body, err := netutil.ReadLimited(response.Body, maxBytes)
	switch {
	case errors.Is(err, netutil.ErrBodyTooLarge):
		return Response{}, &Error{Kind: KindOversized, Path: request.Path, Err: err}
	case err != nil:
		return Response{}, &Error{Kind: transportKind(err), Path: request.Path, Err: err}
	}

	return Response{Body: body, ContentType: response.Header.Get("Content-Type")}, nil
}

// transportKind separates deadline failures from other transport
// failures.
func transportKind(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}
