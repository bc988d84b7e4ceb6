package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ArchiveClient posts GraphQL queries to a SOON archive endpoint.
type ArchiveClient struct {
	url  string
	http *resty.Client
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// NewArchiveClient creates a client for url with the given request timeout.
// A timeout that is not positive is replaced by DefaultRequestTimeout.
func NewArchiveClient(url string, timeout time.Duration) (*ArchiveClient, error) {
	if url == "" {
		return nil, ErrMissingArchiveURL
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	c := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &ArchiveClient{url: url, http: c}, nil
}

// URL returns the archive endpoint.
func (a *ArchiveClient) URL() string { return a.url }

// Query runs query and decodes the data member of the reply into out, which
// may be nil. A non-empty errors member is returned as *ArchiveError.
func (a *ArchiveClient) Query(ctx context.Context, query string, variables map[string]any, out any) error {
	var body graphQLResponse
	resp, err := a.http.R().
		SetContext(ctx).
		SetBody(graphQLRequest{Query: query, Variables: variables}).
		SetResult(&body).
		SetError(&body).
		Post(a.url)
	if err != nil {
		return fmt.Errorf("archive request: %w", err)
	}

	if len(body.Errors) > 0 {
		e := &ArchiveError{Messages: make([]string, 0, len(body.Errors))}
		for _, ge := range body.Errors {
			e.Messages = append(e.Messages, ge.Message)
		}
		return e
	}
	if resp.IsError() {
		return fmt.Errorf("archive request: http status %d: %s", resp.StatusCode(), resp.String())
	}
	if out == nil || len(body.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(body.Data, out); err != nil {
		return fmt.Errorf("decode archive data: %w", err)
	}
	return nil
}
