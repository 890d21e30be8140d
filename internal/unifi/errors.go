package unifi

import (
	"errors"
	"fmt"
)

// ErrAuthExpired marks a request the controller rejected with 401 or 403.
// The poller reacts to it by revalidating the session; every other non-2xx
// status is an *APIError and never triggers re-authentication.
var ErrAuthExpired = errors.New("unifi: authentication expired")

// ErrNoSiteFound is returned by ResolveSiteID when the controller's site
// collection is empty or the first entry has no identifier. It is distinct
// from transport and auth failures so callers do not misclassify a
// misconfigured controller as a retryable connectivity problem.
var ErrNoSiteFound = errors.New("unifi: no site found on controller")

// APIError is a non-2xx, non-auth response from the controller.
// The body is retained (truncated) for the logs; the controller's error
// payloads are short JSON blobs.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unifi: controller returned status %d: %s", e.Status, e.Body)
}

// IsAuthExpired reports whether err is, or wraps, an auth-expiry rejection.
func IsAuthExpired(err error) bool {
	return errors.Is(err, ErrAuthExpired)
}
