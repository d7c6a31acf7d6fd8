// Package dblp fetches per-author BibTeX exports from DBLP.
package dblp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/manuel-freire/snolabib/internal/roster"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the DBLP server base URL.
	BaseURL = "https://dblp.uni-trier.de"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// DefaultDelay is the default pause between author requests. DBLP is
	// a free community service; hammering it gets clients blocked.
	DefaultDelay = time.Second

	// maxBibSize caps a single author export read.
	maxBibSize = 32 << 20
)

// Client is a rate-limited HTTP client for DBLP author exports.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithDelay sets the minimum interval between requests.
func WithDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// NewClient creates a DBLP client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(DefaultDelay), 1),
		baseURL:    BaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthorURL returns the export URL for an author. Numeric x/y person IDs
// have a direct .bib export; letter-keyed IDs only expose the HTML
// bibtex view, which FetchAuthor strips back down to plain BibTeX.
func (c *Client) AuthorURL(a roster.Author) string {
	if a.HasNumericID() {
		return fmt.Sprintf("%s/pid/%s.bib", c.baseURL, a.ID)
	}
	return fmt.Sprintf("%s/pid/%s.html?view=bibtex", c.baseURL, a.ID)
}

// FetchAuthor downloads one author's bibliography and normalizes it:
// stray HTML lines are removed and LaTeX escapes are replaced with
// their Unicode equivalents.
func (c *Client) FetchAuthor(ctx context.Context, a roster.Author) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	url := c.AuthorURL(a)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", a.ID, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{AuthorID: a.ID, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{AuthorID: a.ID, URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBibSize))
	if err != nil {
		return "", &FetchError{AuthorID: a.ID, URL: url, Err: err}
	}

	return Normalize(string(body)), nil
}
