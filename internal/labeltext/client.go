// Package labeltext fetches medication label sections from an external
// provider, caches and archives them, and turns them into pre-fill rules via
// labelrules. Everything here is best-effort enrichment: a failure never
// blocks creating a medication or building a schedule.
package labeltext

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dosewise/dosewise-platform/pkg/logging"
)

const defaultTimeout = 10 * time.Second

// Sections holds the label fragments the extractor cares about.
type Sections struct {
	Usage        string `json:"usage"`
	Dosing       string `json:"dosing"`
	Interactions string `json:"interactions"`
	Warnings     string `json:"warnings"`
}

// Combined concatenates the sections for whole-label rule extraction.
func (s Sections) Combined() string {
	return strings.Join([]string{s.Usage, s.Dosing, s.Interactions, s.Warnings}, "\n")
}

// Client talks to the label-section provider API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a label provider client. An empty baseURL yields an
// unconfigured client whose Fetch always errors.
func NewClient(baseURL string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
}

// Configured reports whether a provider base URL is set.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

// Fetch retrieves the label sections for a medication by name.
func (c *Client) Fetch(ctx context.Context, medName string) (*Sections, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("labeltext: provider not configured")
	}

	endpoint := c.baseURL + "/labels?name=" + url.QueryEscape(medName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("labeltext: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("labeltext: fetch %q: %w", medName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("labeltext: no label for %q", medName)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("labeltext: provider returned status %d", resp.StatusCode)
	}

	var out Sections
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("labeltext: decode response: %w", err)
	}
	return &out, nil
}
