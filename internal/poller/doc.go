// Package poller runs the background refresh loop.
//
// One cycle is: ensure the session is ready, list the site's devices, fetch
// each device's latest statistics (bounded fan-out), map and record the
// successes, render, publish to the snapshot cache, sleep. The loop is a
// single goroutine with an explicit timer — there is never more than one
// cycle in flight.
//
// Error containment:
//   - a device fetch failure skips that device only
//   - a discovery or render failure skips that cycle; the cache keeps the
//     previous snapshot
//   - a 401/403 on the device list triggers exactly one liveness probe and
//     at most one list retry within the cycle; a failed probe resets the
//     session so the next cycle re-discovers the site
//   - only Prime (startup liveness + first discovery) can fail the process
//
// An all-devices-failed cycle publishes nothing: the previous snapshot
// stays bit-for-bit intact until a cycle produces observations again.
package poller
