// Package api hosts the HTTP server, middleware, and handlers. Routes:
//   - GET|POST /sync refreshes the movie cache from the watchlist.
//   - GET /recommendations returns the four recommendation buckets.
//   - GET /health for liveness probes.
//   - GET /metrics for Prometheus scraping.
//
// CORS is wide open, credentials included.
package api
