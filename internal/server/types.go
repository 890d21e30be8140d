package server

// HealthResponse is the payload for GET /healthz.
type HealthResponse struct {
	// Status is "ok" once at least one poll has published, "waiting" before.
	Status string `json:"status"`

	// Site is the discovered controller site, omitted until discovery ran.
	Site string `json:"site,omitempty"`

	// LastSuccess is the RFC3339 time of the last published snapshot,
	// omitted until the first successful poll.
	LastSuccess string `json:"last_success,omitempty"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
