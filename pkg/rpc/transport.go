package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Transport delivers an encoded JSON-RPC request and returns the raw reply body.
type Transport interface {
	Post(ctx context.Context, url string, body []byte) ([]byte, error)
}

// HTTPTransport posts requests over HTTP. Retries are left to Client.
type HTTPTransport struct {
	client *resty.Client
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a transport whose requests are bounded by timeout.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	c := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &HTTPTransport{client: c}
}

func (t *HTTPTransport) Post(ctx context.Context, url string, body []byte) ([]byte, error) {
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(url)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return nil, &HTTPStatusError{StatusCode: code, Body: string(resp.Body())}
	}
	return resp.Body(), nil
}
