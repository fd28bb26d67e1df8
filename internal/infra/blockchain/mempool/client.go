// Package mempool reads Bitcoin mempool data from a mempool.space compatible
// REST API.
package mempool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabapcia/txalert/internal/scanner"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrUnexpectedStatus is returned for any non-2xx response.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// maxTextBody bounds plain-text responses such as the tip height.
const maxTextBody = 64

type client struct {
	baseURL    string
	httpClient *retryablehttp.Client
}

var _ scanner.MempoolSource = (*client)(nil)

// NewClient returns a client for the API rooted at baseURL
// (e.g. "https://mempool.space/api").
func NewClient(httpClient *retryablehttp.Client, baseURL string) *client {
	return &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the API root the client talks to.
func (c *client) BaseURL() string {
	return c.baseURL
}

func (c *client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		res.Body.Close()
		return nil, fmt.Errorf("%w: GET %s: %d", ErrUnexpectedStatus, path, res.StatusCode)
	}

	return res, nil
}

func (c *client) getJSON(ctx context.Context, path string, v any) error {
	res, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("malformed response: GET %s: %w", path, err)
	}

	return nil
}

func (c *client) getText(ctx context.Context, path string) (string, error) {
	res, err := c.get(ctx, path)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxTextBody))
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(body)), nil
}

// TipHeight returns the height of the best block.
func (c *client) TipHeight(ctx context.Context) (uint64, error) {
	text, err := c.getText(ctx, "/blocks/tip/height")
	if err != nil {
		return 0, err
	}

	height, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed response: GET /blocks/tip/height: %w", err)
	}

	return height, nil
}
