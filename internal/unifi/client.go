package unifi

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Integration API paths. The site placeholder in the device paths is filled
// with the identifier resolved via ResolveSiteID.
const (
	pathInfo        = "/proxy/network/integration/v1/info"
	pathSites       = "/proxy/network/integration/v1/sites"
	pathDevices     = "/proxy/network/integration/v1/sites/%s/devices"
	pathDeviceStats = "/proxy/network/integration/v1/sites/%s/devices/%s/statistics/latest"
)

// apiKeyHeader is the header the controller expects the token in.
const apiKeyHeader = "X-API-KEY"

// maxErrorBody caps how much of an error response body is kept for logging.
const maxErrorBody = 2048

// DefaultTimeout bounds each controller request when Options.Timeout is zero.
// The controller is a LAN peer that can hang mid-upgrade; an unbounded
// request would stall the whole poll cycle.
const DefaultTimeout = 10 * time.Second

// Options configures a Client.
type Options struct {
	// Endpoint is the controller base URL, e.g. "https://192.168.3.254".
	Endpoint string

	// APIToken is attached to every request in the X-API-KEY header.
	APIToken string

	// Timeout bounds each request end to end. Zero means DefaultTimeout.
	Timeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification. On-prem
	// controllers ship with self-signed certificates, so this is normally on.
	InsecureSkipVerify bool
}

// Client issues authenticated requests against a UniFi controller's
// Integration API. It performs no retries; callers own the retry policy.
//
// A Client is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	endpoint   *url.URL
}

// authRoundTripper injects the API key header into every outgoing request.
type authRoundTripper struct {
	base  http.RoundTripper
	token string
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(apiKeyHeader, t.token)
	return t.base.RoundTrip(req)
}

// New builds a Client for the controller at o.Endpoint.
// The HTTP client is constructed once and reused across all requests.
func New(o Options) (*Client, error) {
	endpoint, err := url.Parse(o.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("unifi: parse endpoint %q: %w", o.Endpoint, err)
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return nil, fmt.Errorf("unifi: endpoint %q: unsupported scheme %q", o.Endpoint, endpoint.Scheme)
	}

	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := &authRoundTripper{
		base: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: o.InsecureSkipVerify, //nolint:gosec // self-signed controller certs
			},
		},
		token: o.APIToken,
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		endpoint: endpoint,
	}, nil
}

// CheckLiveness probes the controller's info endpoint with the configured
// token. It is the re-authentication signal in this system: the token is
// static, so "re-auth" means confirming the controller still accepts it.
func (c *Client) CheckLiveness(ctx context.Context) error {
	return c.get(ctx, pathInfo, nil)
}

// ResolveSiteID fetches the site collection and returns the first entry's
// identifier. Returns ErrNoSiteFound when the collection is empty or the
// identifier field is absent.
func (c *Client) ResolveSiteID(ctx context.Context) (string, error) {
	var sites sitesResponse
	if err := c.get(ctx, pathSites, &sites); err != nil {
		return "", err
	}
	if len(sites.Data) == 0 || sites.Data[0].ID == "" {
		return "", ErrNoSiteFound
	}
	return sites.Data[0].ID, nil
}

// Devices lists all adopted devices for the given site.
func (c *Client) Devices(ctx context.Context, siteID string) ([]Device, error) {
	var devices devicesResponse
	path := fmt.Sprintf(pathDevices, url.PathEscape(siteID))
	if err := c.get(ctx, path, &devices); err != nil {
		return nil, err
	}
	return devices.Data, nil
}

// DeviceStatistics fetches the latest statistics sample for one device.
func (c *Client) DeviceStatistics(ctx context.Context, siteID, deviceID string) (*DeviceStatistics, error) {
	var stats DeviceStatistics
	path := fmt.Sprintf(pathDeviceStats, url.PathEscape(siteID), url.PathEscape(deviceID))
	if err := c.get(ctx, path, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// get performs an authenticated GET against path and decodes a 2xx JSON body
// into out (skipped when out is nil). Non-2xx statuses are classified here:
// 401/403 wrap ErrAuthExpired, everything else becomes an *APIError.
// Network and timeout failures surface as wrapped transport errors.
func (c *Client) get(ctx context.Context, path string, out any) error {
	u, err := c.endpoint.Parse(path)
	if err != nil {
		return fmt.Errorf("unifi: build url for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("unifi: build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("unifi: get %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("unifi: get %s: status %d: %w", path, resp.StatusCode, ErrAuthExpired)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		// Liveness probes only care about the status; drain so the
		// connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("unifi: decode %s response: %w", path, err)
	}
	return nil
}
