// Package unifi is the HTTP client for a UniFi controller's Integration API.
//
// Client issues authenticated GETs against three logical endpoints: the info
// endpoint (liveness / token validation), the site collection, and the
// per-site device list plus per-device latest statistics. Every request
// carries the API token in the X-API-KEY header; self-signed controller
// certificates are accepted when Options.InsecureSkipVerify is set.
//
// Responses are classified for the poller's benefit: 401/403 wrap
// ErrAuthExpired, other non-2xx statuses become *APIError, network and
// timeout failures stay as wrapped transport errors, and an empty site
// collection is the distinct ErrNoSiteFound. The client itself never
// retries.
package unifi
