// Package middleware provides HTTP middleware for the emtpl render server.
//
// This package includes:
//   - OpenTelemetry tracing, one span per request named after the chi route
//   - Prometheus request metrics
//   - Request logging and panic recovery with log/slog
//
// # OpenTelemetry Middleware
//
//	r := chi.NewRouter()
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithTracerName("my-renderer"),
//	    middleware.WithFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/healthz"
//	    }),
//	))
//
// The tracer comes from the global OpenTelemetry provider. Configure it in
// main() before starting the server.
//
// # Prometheus Metrics
//
// The Prometheus middleware collects:
//   - emtpl_http_requests_total: Requests by method, route and status code
//   - emtpl_http_request_duration_seconds: Request duration by route
//
// Usage:
//
//	r.Use(middleware.Prometheus(middleware.WithNamespace("myapp")))
//	r.Handle("/metrics", promhttp.Handler())
//
// # Context Propagation
//
// Handlers receive the span in the request context, so template sources
// and stores called with r.Context() join the request trace.
package middleware
