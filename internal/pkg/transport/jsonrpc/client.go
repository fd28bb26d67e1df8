// Package jsonrpc provides a generic JSON-RPC 2.0 client over HTTP, backed by
// a retrying HTTP client.
package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

var (
	// ErrProviderReturnedError indicates the server answered with a JSON-RPC error object.
	ErrProviderReturnedError = errors.New("provider error")

	// ErrUnexpectedStatus indicates the server answered with a non-2xx HTTP status.
	ErrUnexpectedStatus = errors.New("unexpected http status")
)

type response struct {
	JsonRPC string `json:"jsonrpc"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Result json.RawMessage `json:"result"`
}

// Err reports the JSON-RPC error object, if any, wrapped in ErrProviderReturnedError.
func (r response) Err() error {
	if r.Error == nil {
		return nil
	}

	return fmt.Errorf("%w: [%d] - %s", ErrProviderReturnedError, r.Error.Code, r.Error.Message)
}

// Client sends JSON-RPC calls.
type Client interface {
	// Fetch calls method with params and returns the raw "result" member.
	// A JSON null result is returned as the literal `null` message.
	Fetch(ctx context.Context, method string, params ...any) (json.RawMessage, error)
}

type client struct {
	providerEndpoint string
	httpClient       *retryablehttp.Client
}

var _ Client = (*client)(nil)

// Fetch posts one JSON-RPC request whose id is a fresh UUID.
func (c *client) Fetch(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}

	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      uuid.NewString(),
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.providerEndpoint, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, res.StatusCode)
	}

	var data response
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		return nil, err
	}

	if err := data.Err(); err != nil {
		return nil, err
	}

	return data.Result, nil
}

// NewClient returns a Client posting to providerEndpoint through httpClient.
func NewClient(httpClient *retryablehttp.Client, providerEndpoint string) *client {
	return &client{
		providerEndpoint: providerEndpoint,
		httpClient:       httpClient,
	}
}
