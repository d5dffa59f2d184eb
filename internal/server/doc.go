// Package server provides HTTP routing, middleware, and the service endpoints.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Endpoints
//
// [AnimeListHandler] serves GET /animelist. It validates the username and
// status query parameters before anything touches the network, then drives
// the enrichment pipeline and returns the merged records as a JSON array.
//
// Failures map onto statuses by stage: bad parameters → 400, token
// acquisition or a rejected access token → 401, provider or dataset host
// failures → 502, credentials-file problems → 500. Every error body names
// the stage that failed.
//
// [HealthHandler] serves GET /health for liveness probes.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
