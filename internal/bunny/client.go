package bunny

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/beautyhome/studio-api/internal/storage"
)

const (
	// DefaultBaseURL is the default Edge Storage API endpoint (Falkenstein region).
	DefaultBaseURL = "https://storage.bunnycdn.com"
)

// Client is an HTTP client for a single bunny.net Edge Storage zone.
// Reads go through the public pull-zone URL when one is configured and
// through the storage API otherwise. Writes always use the storage API and
// require an access key.
type Client struct {
	baseURL    string
	publicURL  string
	zone       string
	accessKey  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom storage API base URL (useful for testing with mock server).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithPublicURL sets the pull-zone URL used for unauthenticated reads.
func WithPublicURL(url string) Option {
	return func(c *Client) {
		c.publicURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a new Edge Storage client for zone.
// An empty accessKey yields a read-only client.
func NewClient(zone, accessKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		zone:       strings.Trim(zone, "/"),
		accessKey:  accessKey,
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Writable reports whether the client has credentials for uploads.
func (c *Client) Writable() bool {
	return c.accessKey != ""
}

// Get downloads the object at path. Returns ErrNotFound if it does not exist.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	path = strings.TrimLeft(path, "/")

	var url string
	authenticated := false
	switch {
	case c.publicURL != "":
		url = c.publicURL + "/" + path
	case c.accessKey != "":
		url = c.objectURL(path)
		authenticated = true
	default:
		return nil, fmt.Errorf("bunny: no public URL or access key configured for reads: %w", storage.ErrStorageUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if authenticated {
		req.Header.Set("AccessKey", c.accessKey)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		//nolint:errcheck
		resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusOK {
		return body, nil
	}

	return nil, parseError(resp.StatusCode, body)
}

// Put uploads data to path, replacing any existing object.
func (c *Client) Put(ctx context.Context, path string, data []byte) error {
	if c.accessKey == "" {
		return ErrReadOnly
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.objectURL(strings.TrimLeft(path, "/")), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("AccessKey", c.accessKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", path, err)
	}
	defer func() {
		//nolint:errcheck
		resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return parseError(resp.StatusCode, body)
}

// List returns the objects inside dir, most recently changed first.
// A missing directory yields an empty listing.
func (c *Client) List(ctx context.Context, dir string) ([]storage.ObjectInfo, error) {
	if c.accessKey == "" {
		return nil, ErrReadOnly
	}

	dir = strings.Trim(dir, "/")
	url := fmt.Sprintf("%s/%s/", c.baseURL, c.zone)
	if dir != "" {
		url = fmt.Sprintf("%s/%s/%s/", c.baseURL, c.zone, dir)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("AccessKey", c.accessKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		//nolint:errcheck
		resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return []storage.ObjectInfo{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseError(resp.StatusCode, body)
	}

	var objects []StorageObject
	if err := json.Unmarshal(body, &objects); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}

	infos := make([]storage.ObjectInfo, 0, len(objects))
	for _, o := range objects {
		infos = append(infos, o.objectInfo())
	}
	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].LastChanged.After(infos[j].LastChanged)
	})

	return infos, nil
}

// Ping checks that the storage zone answers a listing request.
func (c *Client) Ping(ctx context.Context) error {
	if c.accessKey == "" {
		if c.publicURL == "" {
			return fmt.Errorf("bunny: ping: %w", storage.ErrStorageUnavailable)
		}
		// Read-only deployments cannot list; a missing object still proves reachability.
		_, err := c.Get(ctx, "content/home.json")
		if err == nil || storage.IsNotFound(err) {
			return nil
		}
		return err
	}
	_, err := c.List(ctx, "")
	return err
}

func (c *Client) objectURL(path string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, c.zone, path)
}

// parseError converts a non-success response into an error.
func parseError(statusCode int, body []byte) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
			apiErr.StatusCode = statusCode
			return &apiErr
		}
		return fmt.Errorf("bunny: request failed (status %d)", statusCode)
	}
}
