// Package companieshouse provides a client for the Companies House public data API.
package companieshouse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned when the API responds with 404 for a resource.
var ErrNotFound = eris.New("companieshouse: not found")

// Client defines the Companies House operations used by the scanner.
type Client interface {
	// GetCompany fetches the company profile.
	GetCompany(ctx context.Context, companyNumber string) (*Company, error)
	// GetOfficers fetches the officer list for a company.
	GetOfficers(ctx context.Context, companyNumber string) (*OfficerList, error)
	// GetFilingHistory fetches the filing history for a company.
	GetFilingHistory(ctx context.Context, companyNumber string) (*FilingList, error)
	// GetPSC fetches persons with significant control for a company.
	GetPSC(ctx context.Context, companyNumber string) (*PSCList, error)
	// GetCharges fetches registered charges and mortgages for a company.
	GetCharges(ctx context.Context, companyNumber string) (*ChargeList, error)
	// GetInsolvency fetches the insolvency record for a company, if any.
	GetInsolvency(ctx context.Context, companyNumber string) (*Insolvency, error)
	// SearchCompanies searches the register by free-text query (name or address).
	SearchCompanies(ctx context.Context, query string) (*SearchResult, error)
}

// Option configures the Companies House client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default request pacing.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithPageSize sets items_per_page for list and search endpoints.
func WithPageSize(n int) Option {
	return func(c *httpClient) {
		c.pageSize = n
	}
}

type httpClient struct {
	apiKey   string
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
	pageSize int
}

// NewClient creates a Companies House client. The API key is sent as the
// basic-auth username with an empty password, per the API documentation.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.company-information.service.gov.uk",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		// Published quota is 600 requests per 5 minutes.
		limiter:  rate.NewLimiter(rate.Limit(2), 10),
		pageSize: 100,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) GetCompany(ctx context.Context, companyNumber string) (*Company, error) {
	var out Company
	if err := c.get(ctx, "/company/"+url.PathEscape(companyNumber), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) GetOfficers(ctx context.Context, companyNumber string) (*OfficerList, error) {
	var out OfficerList
	if err := c.get(ctx, "/company/"+url.PathEscape(companyNumber)+"/officers", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) GetFilingHistory(ctx context.Context, companyNumber string) (*FilingList, error) {
	q := url.Values{"items_per_page": {fmt.Sprint(c.pageSize)}}
	var out FilingList
	if err := c.get(ctx, "/company/"+url.PathEscape(companyNumber)+"/filing-history", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) GetPSC(ctx context.Context, companyNumber string) (*PSCList, error) {
	var out PSCList
	if err := c.get(ctx, "/company/"+url.PathEscape(companyNumber)+"/persons-with-significant-control", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) GetCharges(ctx context.Context, companyNumber string) (*ChargeList, error) {
	var out ChargeList
	if err := c.get(ctx, "/company/"+url.PathEscape(companyNumber)+"/charges", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) GetInsolvency(ctx context.Context, companyNumber string) (*Insolvency, error) {
	var out Insolvency
	if err := c.get(ctx, "/company/"+url.PathEscape(companyNumber)+"/insolvency", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) SearchCompanies(ctx context.Context, query string) (*SearchResult, error) {
	q := url.Values{
		"q":              {query},
		"items_per_page": {fmt.Sprint(c.pageSize)},
	}
	var out SearchResult
	if err := c.get(ctx, "/search/companies", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// get performs a rate-limited GET against the API and decodes the JSON body.
func (c *httpClient) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "companieshouse: rate limit wait")
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return eris.Wrap(err, "companieshouse: build request")
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")

	body, status, err := c.retryDo(ctx, req)
	if err != nil {
		return eris.Wrap(err, fmt.Sprintf("companieshouse: GET %s", path))
	}

	if status == http.StatusNotFound {
		return eris.Wrap(ErrNotFound, path)
	}
	if status != http.StatusOK {
		return eris.Errorf("companieshouse: GET %s: HTTP %d: %s", path, status, truncate(string(body), 500))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, fmt.Sprintf("companieshouse: unmarshal %s", path))
	}
	return nil
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// retryDo executes an HTTP request with exponential backoff retries on
// transient failures (429, 500, 502, 503). Returns the response body and
// status code on success, or the last error after exhausting retries.
func (c *httpClient) retryDo(ctx context.Context, req *http.Request) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		retryReq := req.Clone(ctx)

		resp, err := c.http.Do(retryReq)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, eris.Wrap(lastErr, "companieshouse: request failed")
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, resp.StatusCode, eris.Wrap(err, "companieshouse: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, eris.Wrap(lastErr, "companieshouse: retries exhausted")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
