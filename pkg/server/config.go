package server

import (
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/emtpl/internal/config"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Address is the listen address (e.g. "localhost:7070").
	Address string

	// ReadTimeout is the HTTP read timeout.
	// Default: 10 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the HTTP write timeout.
	// Default: 30 seconds.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10 seconds.
	ShutdownTimeout time.Duration

	// ReadBufferSize and WriteBufferSize size the websocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin is called to validate the websocket request origin.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// MaxBodySize limits POST /render bodies.
	// Default: 1MB.
	MaxBodySize int64

	// Session configures live sessions.
	Session SessionConfig

	// Gatherer serves GET /metrics.
	// Default: prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// SessionConfig holds configuration for live sessions.
type SessionConfig struct {
	// ReadTimeout is the maximum time to wait for a message from the client.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// HeartbeatInterval is the time between heartbeat pings.
	// Default: 30 seconds.
	HeartbeatInterval time.Duration

	// MaxMessageSize is the maximum size of an incoming message.
	// Default: 256KB.
	MaxMessageSize int64
}

// DefaultSessionConfig returns a SessionConfig with sensible defaults.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		MaxMessageSize:    256 * 1024,
	}
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:         config.DefaultHost + ":7070",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     SameOriginCheck,
		MaxBodySize:     1 << 20,
		Session:         DefaultSessionConfig(),
		Gatherer:        prometheus.DefaultGatherer,
	}
}

// ConfigFrom builds a ServerConfig from the server section of emtpl.json.
// An unparsable read timeout keeps the default.
func ConfigFrom(c *config.Config) *ServerConfig {
	sc := DefaultServerConfig()
	sc.Address = c.ServerAddress()
	if d, err := time.ParseDuration(c.Server.ReadTimeout); err == nil && d > 0 {
		sc.ReadTimeout = d
	}
	return sc
}

// withDefaults fills unset fields.
func (c *ServerConfig) withDefaults() *ServerConfig {
	d := DefaultServerConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.Address == "" {
		out.Address = d.Address
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = d.ReadTimeout
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = d.WriteTimeout
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = d.ShutdownTimeout
	}
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = d.ReadBufferSize
	}
	if out.WriteBufferSize == 0 {
		out.WriteBufferSize = d.WriteBufferSize
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = d.CheckOrigin
	}
	if out.MaxBodySize == 0 {
		out.MaxBodySize = d.MaxBodySize
	}
	if out.Gatherer == nil {
		out.Gatherer = d.Gatherer
	}
	if out.Session.ReadTimeout == 0 {
		out.Session.ReadTimeout = d.Session.ReadTimeout
	}
	if out.Session.WriteTimeout == 0 {
		out.Session.WriteTimeout = d.Session.WriteTimeout
	}
	if out.Session.HeartbeatInterval == 0 {
		out.Session.HeartbeatInterval = d.Session.HeartbeatInterval
	}
	if out.Session.MaxMessageSize == 0 {
		out.Session.MaxMessageSize = d.Session.MaxMessageSize
	}
	return &out
}

// SameOriginCheck validates that the websocket request origin matches the host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// No Origin header (e.g., curl or a native client)
		return true
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if r.Host == "" {
		return false
	}
	return originURL.Host == r.Host
}
