package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shelfdocs/libshelf-go/download"
)

// MaxResponseSize is the maximum allowed response body size for document
// fetches (1 GB). This prevents memory exhaustion from a misbehaving
// endpoint.
const MaxResponseSize = 1 << 30

// maxErrorBodySize bounds how much of a remote error body is surfaced.
const maxErrorBodySize = 1024

// Client talks to the document service. Protected payloads are fetched as
// opaque bytes from GET {base}/documents?key=<key> with a bearer credential;
// document metadata arrives on response headers.
type Client struct {
	base   string
	client *http.Client
}

// NewClient creates a document service client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
	}
}

// FetchDocument retrieves content and metadata for key. It satisfies
// download.Fetcher: failures wrap download.ErrFetchFailed (or
// download.ErrAuthRequired on a credential rejection) with the remote cause
// attached.
func (c *Client) FetchDocument(ctx context.Context, credential, key string) (*download.Payload, error) {
	resp, err := c.get(ctx, credential, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	meta, err := ParseDocumentHeaders(resp.Header)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", download.ErrFetchFailed, err)
	}

	content, err := readBody(resp.Body)
	if err != nil {
		return nil, err
	}

	return &download.Payload{Content: content, Meta: *meta}, nil
}

// FetchContent retrieves only the payload bytes for key. Used by the
// view-only path, which displays a document without committing it to the
// cache.
func (c *Client) FetchContent(ctx context.Context, credential, key string) ([]byte, error) {
	resp, err := c.get(ctx, credential, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return readBody(resp.Body)
}

func (c *Client) get(ctx context.Context, credential, key string) (*http.Response, error) {
	endpoint := c.base + "/documents?key=" + url.QueryEscape(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", download.ErrFetchFailed, err)
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", download.ErrFetchFailed, ErrConnectionFailed, err)
	}
	return resp, nil
}

// checkStatus maps a non-2xx response to an error carrying the status and a
// truncated remote error body.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	msg := strings.TrimSpace(string(body))

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %w: HTTP %d: %s", download.ErrAuthRequired, ErrUnauthorized, resp.StatusCode, msg)
	}
	return fmt.Errorf("%w: %w: HTTP %d: %s", download.ErrFetchFailed, ErrRemote, resp.StatusCode, msg)
}

func readBody(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", download.ErrFetchFailed, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %w", download.ErrFetchFailed, ErrEmptyResponse)
	}
	return data, nil
}
