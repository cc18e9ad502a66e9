package emtpl

import (
	"log/slog"

	"github.com/vango-dev/emtpl/internal/config"
	"github.com/vango-dev/emtpl/pkg/metrics"
	"github.com/vango-dev/emtpl/pkg/source"
	"github.com/vango-dev/emtpl/pkg/store"
)

// Config configures an Engine. All fields are optional.
type Config struct {
	// File is the emtpl.json configuration. Nil means defaults.
	File *config.Config

	// Source supplies templates to Template and RenderTemplate.
	// Nil means source.FromConfig(File).
	Source source.Source

	// Store keeps the last render of each template between runs.
	Store *store.Store

	// Metrics receives render statistics.
	Metrics *metrics.Collector

	// TracerName is the OpenTelemetry tracer name (default: "emtpl").
	TracerName string

	// Logger is the structured logger. If nil, slog.Default() is used.
	Logger *slog.Logger
}
