package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"shareit/internal/models"
)

// relayedHeaders are copied from the backend response to the caller.
var relayedHeaders = []string{"Content-Type", "Content-Disposition", requestIDHeader}

// BackendClient forwards validated requests to the backend API.
type BackendClient struct {
	baseURL      string
	apiKey       string
	apiKeyHeader string
	httpClient   *http.Client
}

func NewBackendClient(baseURL, apiKey, apiKeyHeader string, timeout time.Duration) *BackendClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BackendClient{
		baseURL:      baseURL,
		apiKey:       apiKey,
		apiKeyHeader: apiKeyHeader,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// BackendResponse is a backend reply held in memory for relaying.
type BackendResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Forward sends method path?rawQuery with body on behalf of userID.
// An empty userID omits the identity header.
func (c *BackendClient) Forward(
	ctx context.Context,
	method, path, rawQuery, userID, requestID string,
	body []byte,
) (*BackendResponse, error) {
	endpoint := c.baseURL + path
	if rawQuery != "" {
		endpoint += "?" + rawQuery
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build backend request: %w", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(models.HeaderUserID, userID)
	}
	if requestID != "" {
		req.Header.Set(requestIDHeader, requestID)
	}
	c.addHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read backend response: %w", err)
	}

	return &BackendResponse{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func (c *BackendClient) addHeaders(req *http.Request) {
	if c.apiKey != "" && c.apiKeyHeader != "" {
		req.Header.Set(c.apiKeyHeader, c.apiKey)
	}
}
