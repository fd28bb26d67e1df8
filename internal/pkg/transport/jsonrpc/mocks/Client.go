// Package mocks provides testify mocks for the jsonrpc package.
package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

// Client is a mock of jsonrpc.Client.
type Client struct {
	mock.Mock
}

// Fetch records the call. Expectations are registered with the method name,
// followed by the params slice when params were passed:
//
//	m.On("Fetch", mock.Anything, "eth_getBlockByNumber", []any{hex, false})
func (m *Client) Fetch(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	var args mock.Arguments
	if len(params) > 0 {
		args = m.Called(ctx, method, params)
	} else {
		args = m.Called(ctx, method)
	}

	var raw json.RawMessage
	if v := args.Get(0); v != nil {
		raw = v.(json.RawMessage)
	}

	return raw, args.Error(1)
}

// NewClient creates a Client mock whose expectations are asserted on test cleanup.
func NewClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *Client {
	m := &Client{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
