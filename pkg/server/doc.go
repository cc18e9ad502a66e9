// Package server exposes an emtpl Engine over HTTP and WebSocket.
//
// # HTTP API
//
//   - POST /render renders a template or inline markup against a JSON state
//   - GET /templates lists template names
//   - GET /templates/{name} returns a parsed template
//   - GET /snapshots/{name}, DELETE /snapshots/{name} read and drop stored renders
//   - GET /metrics serves Prometheus metrics
//   - GET /live upgrades to a live render session
//
// # Live Sessions
//
// A live session keeps the previous render of the connection. Each request
// message re-renders against it and the reply carries the annotated tree,
// so the client patches only what changed. Binary frames carry msgpack,
// text frames carry JSON; replies use the frame type of the request.
//
// The session runs two goroutines:
//   - ReadLoop: decodes requests and renders them in order
//   - WriteLoop: sends heartbeat pings
package server
