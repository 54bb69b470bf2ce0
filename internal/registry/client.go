package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const maxResponseSize = 10 << 20 // 10 MB

const (
	defaultTimeout    = 30 * time.Second
	defaultRetries    = 1
	defaultRetryDelay = 250 * time.Millisecond
	userAgent         = "ulpi-agent-library"
)

// Option configures a Client.
type Option func(*Client)

// Client fetches the manifest and library files.
type Client struct {
	manifestURL string
	urls        *GitHubURLBuilder
	token       string
	retries     int
	retryDelay  time.Duration
	httpClient  *http.Client
	logger      *log.Logger
}

// NewClient creates a new registry client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		manifestURL: DefaultManifestURL,
		urls:        NewGitHubURLBuilder(DefaultRawBaseURL, DefaultAPIBaseURL),
		retries:     defaultRetries,
		retryDelay:  defaultRetryDelay,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithBaseURL points every endpoint at one server: the manifest at
// <base>/templates/map.json, raw files at <base>/<path> and directory
// listings at <base>/contents/<path>.
// This is primarily useful for testing with httptest servers.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		base := strings.TrimRight(baseURL, "/")
		c.manifestURL = base + "/templates/map.json"
		c.urls = NewGitHubURLBuilder(base, base+"/contents")
	}
}

// WithManifestURL sets the manifest location.
func WithManifestURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.manifestURL = u
		}
	}
}

// WithRawBaseURL sets the base that manifest source paths are joined to.
func WithRawBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.urls.RawBaseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithAPIBaseURL sets the contents API base used for folder listings.
func WithAPIBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.urls.APIBaseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithToken sets a GitHub token sent to the contents API.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithRetries sets how many extra attempts are made after a network error or 5xx response.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// ManifestURL returns the effective manifest location.
func (c *Client) ManifestURL() string {
	return c.manifestURL
}

// FetchManifest fetches, validates and parses the installation map.
// Every call goes to the network.
func (c *Client) FetchManifest(ctx context.Context) (*Manifest, error) {
	data, err := c.get(ctx, c.manifestURL, true)
	if err != nil {
		return nil, &ManifestUnavailableError{URL: c.manifestURL, Err: err}
	}

	if err := ValidateManifest(data); err != nil {
		return nil, &ManifestUnavailableError{URL: c.manifestURL, Err: err}
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &ManifestUnavailableError{URL: c.manifestURL, Err: fmt.Errorf("parsing manifest: %w", err)}
	}
	return &m, nil
}

// DownloadFile downloads a repository-relative file.
func (c *Client) DownloadFile(ctx context.Context, source string) ([]byte, error) {
	fileURL, err := c.urls.RawFileURL(source)
	if err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}
	data, err := c.get(ctx, fileURL, false)
	if err != nil {
		return nil, newFetchError(source, fileURL, err)
	}
	return data, nil
}

// Download fetches an absolute URL, typically a listing item's download_url.
func (c *Client) Download(ctx context.Context, source, rawURL string) ([]byte, error) {
	data, err := c.get(ctx, rawURL, false)
	if err != nil {
		return nil, newFetchError(source, rawURL, err)
	}
	return data, nil
}

// ListFolder lists a repository directory through the contents API.
func (c *Client) ListFolder(ctx context.Context, dir string) ([]ContentItem, error) {
	listURL, err := c.urls.ContentsURL(dir)
	if err != nil {
		return nil, &FetchError{Source: dir, Err: err}
	}
	data, err := c.get(ctx, listURL, true)
	if err != nil {
		return nil, newFetchError(dir, listURL, err)
	}

	var items []ContentItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &FetchError{Source: dir, URL: listURL, Err: fmt.Errorf("parsing folder listing: %w", err)}
	}
	return items, nil
}

// statusError is a completed request with a non-success status.
type statusError struct {
	status string
}

func (e *statusError) Error() string {
	return e.status
}

func newFetchError(source, url string, err error) *FetchError {
	var se *statusError
	if errors.As(err, &se) {
		return &FetchError{Source: source, URL: url, Status: se.status}
	}
	return &FetchError{Source: source, URL: url, Err: err}
}

// get performs a GET with a bounded retry on transport errors and 5xx responses.
func (c *Client) get(ctx context.Context, url string, wantJSON bool) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying request", "url", url, "attempt", attempt+1, "err", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			}
		}

		data, retry, err := c.do(ctx, url, wantJSON)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, url string, wantJSON bool) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", userAgent)
	if wantJSON {
		req.Header.Set("Accept", "application/vnd.github.v3+json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	c.logger.Debug("fetched", "url", url, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode >= 500, &statusError{status: resp.Status}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, true, fmt.Errorf("reading response from %s: %w", url, err)
	}

	if wantJSON && strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return nil, false, fmt.Errorf("received HTML response from %s (expected JSON); check the manifest URL", url)
	}

	return data, false, nil
}
