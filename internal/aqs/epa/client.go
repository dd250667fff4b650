// Package epa provides a client for the EPA Air Quality System data API.
package epa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aqsfetch/aqsfetch/internal/aqs"
	"github.com/aqsfetch/aqsfetch/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the AQS API root.
	DefaultBaseURL = "https://aqs.epa.gov/data/api"

	// ProviderName identifies this provider.
	ProviderName = "aqs"
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the AQS client.
type ClientConfig struct {
	// BaseURL is the API root (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use.
	// If nil, a default resilient client will be created.
	HTTPClient HTTPDoer

	// Credentials supplies the email/key pair injected into every request.
	Credentials aqs.CredentialsProvider

	// Timeout for individual API requests (default: 30s; sample queries can
	// return a full year of hourly rows).
	Timeout time.Duration
}

// Client is an AQS API client. It implements aqs.Fetcher and aqs.CodeLister.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	creds      aqs.CredentialsProvider
}

// NewClient creates a new AQS client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            ProviderName,
			Timeout:         timeout,
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     10 * time.Second,
		})
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		creds:      cfg.Credentials,
	}
}

// envelope is the common AQS response shape.
type envelope struct {
	Header []headerEntry   `json:"Header"`
	Data   json.RawMessage `json:"Data"`
}

type headerEntry struct {
	Status string   `json:"status"`
	Error  []string `json:"error"`
}

// FetchSamples issues one data query and returns the decoded Data rows.
func (c *Client) FetchSamples(ctx context.Context, service, filter string, query aqs.Params) ([]aqs.SampleRow, error) {
	data, err := c.get(ctx, service, filter, query)
	if err != nil {
		return nil, err
	}

	var rows []aqs.SampleRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, &aqs.TransportError{Service: service, Filter: filter,
			Err: fmt.Errorf("decode data rows: %w", err)}
	}
	return rows, nil
}

// ListCodes fetches a code list from the list service.
func (c *Client) ListCodes(ctx context.Context, listFilter string, scope map[string]string) (aqs.CodeTable, error) {
	data, err := c.get(ctx, "list", listFilter, scope)
	if err != nil {
		return nil, err
	}

	var table aqs.CodeTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, &aqs.TransportError{Service: "list", Filter: listFilter,
			Err: fmt.Errorf("decode code list: %w", err)}
	}
	return table, nil
}

// get performs one GET against {base}/{service}/{filter}, carrying the
// email/key pair plus the query parameters, and extracts the Data array.
func (c *Client) get(ctx context.Context, service, filter string, query map[string]string) (json.RawMessage, error) {
	creds, err := c.creds.Credentials(ctx)
	if err != nil {
		return nil, err
	}

	values := url.Values{}
	values.Set("email", creds.Email)
	values.Set("key", creds.Key)
	for k, v := range query {
		values.Set(k, v)
	}

	endpoint := c.baseURL + "/" + service + "/" + filter + "?" + values.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, &aqs.TransportError{Service: service, Filter: filter,
			Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &aqs.TransportError{Service: service, Filter: filter, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &aqs.TransportError{Service: service, Filter: filter,
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &aqs.TransportError{Service: service, Filter: filter,
			Err: fmt.Errorf("decode response: %w", err)}
	}

	// The API reports request-level failures inside the Header array.
	for _, h := range env.Header {
		if h.Status != "" && h.Status != "Success" {
			return nil, &aqs.TransportError{Service: service, Filter: filter,
				Err: fmt.Errorf("server reported %s: %s", h.Status, strings.Join(h.Error, "; "))}
		}
	}
	return env.Data, nil
}
