// Package server is the HTTP serving boundary: GET /metrics streams the
// cached exposition text, GET /healthz reports exporter liveness and poll
// freshness as JSON. Both routes are read-only views over the snapshot
// cache and session — the handler never blocks on, or triggers, a poll.
package server
