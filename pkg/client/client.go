// Package client is the typed SDK for the store API: a single HTTP
// chokepoint with a uniform error taxonomy, a credential store, an auth
// session, and cache-aware services for products, inquiries and stats.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/creeeasy/online-store-sub000/pkg/models"
)

const defaultTimeout = 15 * time.Second

// Client is the HTTP chokepoint every service call passes through. It
// attaches JSON headers and the bearer token, decodes the response envelope,
// classifies failures, and clears stored credentials on any 401. It never
// retries; retry policy lives in the cache layer above.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      CredentialStore
	timeout    time.Duration
	logger     *logrus.Logger
}

func New(baseURL string, creds CredentialStore, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		creds:      creds,
		timeout:    defaultTimeout,
		logger:     logger,
	}
}

// SetTimeout overrides the per-call deadline.
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

// Credentials exposes the credential store to the session layer.
func (c *Client) Credentials() CredentialStore {
	return c.creds
}

// do issues one request and decodes the envelope. When out is non-nil the
// envelope's data object is decoded into it. The returned envelope carries
// pagination for list calls.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) (*models.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if creds, err := c.creds.Load(); err == nil && creds.Token != "" {
		req.Header.Set("Authorization", "Bearer "+creds.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	var envelope models.Response
	if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr != nil && resp.StatusCode < 400 {
		return nil, &APIError{
			Kind:    KindUnknown,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("malformed response: %v", decodeErr),
		}
	}

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusUnauthorized {
			// Stored credentials are dead; clear them no matter which call
			// hit the 401.
			if clearErr := c.creds.Clear(); clearErr != nil {
				c.logger.WithError(clearErr).Warn("Failed to clear credentials after 401")
			}
		}
		message := envelope.Message
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{
			Kind:    classifyStatus(resp.StatusCode, envelope.Errors),
			Status:  resp.StatusCode,
			Message: message,
			Fields:  envelope.Errors,
		}
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return nil, fmt.Errorf("decode response data: %w", err)
		}
	}

	return &envelope, nil
}

// transportError splits "deadline elapsed" from "could not reach the
// server".
func (c *Client) transportError(ctx context.Context, err error) *APIError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &APIError{Kind: KindTimeout, Message: "request timed out"}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &APIError{Kind: KindTimeout, Message: "request timed out"}
	}
	return &APIError{Kind: KindNetwork, Message: fmt.Sprintf("network error: %v", err)}
}
