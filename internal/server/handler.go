package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/obsidianstack/unifi-exporter/internal/session"
	"github.com/obsidianstack/unifi-exporter/internal/snapshot"
)

// contentTypeText is the exposition-format content type Prometheus expects.
const contentTypeText = "text/plain; version=0.0.4; charset=utf-8"

// Handler serves the scrape endpoint and a small health probe.
// It only ever reads the snapshot cache; it has no path to the controller
// and therefore no failure mode of its own beyond the process being down.
type Handler struct {
	cache *snapshot.Cache
	sess  *session.Session
	mux   *http.ServeMux
}

// New creates a Handler wired to the snapshot cache and registers routes.
func New(cache *snapshot.Cache, sess *session.Session) http.Handler {
	h := &Handler{cache: cache, sess: sess, mux: http.NewServeMux()}

	h.mux.HandleFunc("/metrics", h.metrics)
	h.mux.HandleFunc("/healthz", h.healthz)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// metrics returns GET /metrics — the most recent successful render.
//
// Always 200: a failing or not-yet-finished poll serves the previous (or
// empty) snapshot rather than an error, so scraping the exporter stays
// meaningful even while the upstream controller is down.
func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	w.Header().Set("Content-Type", contentTypeText)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(h.cache.Text()))
}

// healthz returns GET /healthz — exporter liveness plus poll freshness.
// "waiting" means the process is up but no poll has succeeded yet.
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := HealthResponse{Status: "ok"}
	if site, ok := h.sess.SiteID(); ok {
		resp.Site = site
	}
	if t, ok := h.cache.UpdatedAt(); ok {
		resp.LastSuccess = t.UTC().Format(time.RFC3339)
	} else {
		resp.Status = "waiting"
	}

	jsonResp(w, http.StatusOK, resp)
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
