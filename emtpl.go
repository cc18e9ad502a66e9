// Package emtpl parses markup templates, renders them against component
// state and diffs each render against the previous one.
//
// Usage:
//
//	eng, err := emtpl.New(emtpl.Config{})
//	tree, err := eng.Parse(ctx, `<ul><li em:for="let it in items">{{it}}</li></ul>`)
//	first, err := eng.Render(ctx, tree, nil, state, nil)
//	next, err := eng.Render(ctx, tree, first, newState, nil)
//
// The returned tree carries a status per node (APPEND, UPDATE, MOVE,
// MOVEUPDATE, DELETE, NORMAL) together with attribute changes, so a
// platform layer can patch its own objects without re-creating them.
package emtpl

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/emtpl/internal/config"
	"github.com/vango-dev/emtpl/internal/errors"
	"github.com/vango-dev/emtpl/pkg/metrics"
	"github.com/vango-dev/emtpl/pkg/parser"
	"github.com/vango-dev/emtpl/pkg/render"
	"github.com/vango-dev/emtpl/pkg/source"
	"github.com/vango-dev/emtpl/pkg/store"
	"github.com/vango-dev/emtpl/pkg/vdom"
)

// Version is the release version reported by the CLI and server.
const Version = "0.4.0"

const defaultTracerName = "emtpl"

// Engine ties a parser, a renderer and optional template source, snapshot
// store and metrics together. It is safe for concurrent use.
type Engine struct {
	cfg      *config.Config
	parser   *parser.Parser
	renderer *render.Renderer
	source   source.Source
	store    *store.Store
	metrics  *metrics.Collector
	tracer   trace.Tracer
	logger   *slog.Logger

	mu        sync.RWMutex
	templates map[string]*vdom.Element
}

// New creates an Engine.
func New(c Config) (*Engine, error) {
	cfg := c.File
	if cfg == nil {
		cfg = config.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "emtpl")

	tracerName := c.TracerName
	if tracerName == "" {
		tracerName = defaultTracerName
	}

	rc := render.ConfigFrom(cfg)
	rc.Logger = logger
	if c.Metrics != nil {
		rc.Observer = c.Metrics
	}

	src := c.Source
	if src == nil {
		src = source.FromConfig(cfg)
	}

	return &Engine{
		cfg: cfg,
		parser: parser.New(parser.Options{
			VoidTags: cfg.Parser.VoidTags,
			RootTag:  cfg.Parser.RootTag,
		}),
		renderer:  render.New(rc),
		source:    src,
		store:     c.Store,
		metrics:   c.Metrics,
		tracer:    otel.Tracer(tracerName),
		logger:    logger,
		templates: make(map[string]*vdom.Element),
	}, nil
}

// Parse parses markup into a template tree.
func (e *Engine) Parse(ctx context.Context, markup string) (*vdom.Element, error) {
	_, span := e.tracer.Start(ctx, "emtpl.parse",
		trace.WithAttributes(attribute.Int("emtpl.markup_bytes", len(markup))))
	defer span.End()

	tree, err := e.parser.Parse(markup)
	if err != nil {
		e.fail(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("emtpl.nodes", vdom.Count(tree)-1))
	span.SetStatus(codes.Ok, "")
	return tree, nil
}

// Render renders tree against component and diffs it against prev, which
// is nil on a first render. tree is left untouched.
func (e *Engine) Render(ctx context.Context, tree, prev *vdom.Element, component any, opts *render.Options) (*vdom.Element, error) {
	_, span := e.tracer.Start(ctx, "emtpl.render",
		trace.WithAttributes(attribute.Bool("emtpl.first", prev == nil)))
	defer span.End()

	if err := ctx.Err(); err != nil {
		e.fail(span, err)
		return nil, err
	}

	root, err := e.renderer.Render(tree, prev, component, opts)
	if err != nil {
		e.fail(span, err)
		e.logger.Debug("render failed", "error", err)
		return nil, err
	}

	attrs := []attribute.KeyValue{attribute.Int("emtpl.deleted", vdom.CountDeleted(root))}
	for status, n := range vdom.CountStatus(root) {
		attrs = append(attrs, attribute.Int("emtpl.nodes."+status.String(), n))
	}
	span.SetAttributes(attrs...)
	span.SetStatus(codes.Ok, "")
	return root, nil
}

// Template loads and parses the named template from the engine's source.
// Parsed templates are cached until Invalidate is called.
func (e *Engine) Template(ctx context.Context, name string) (*vdom.Element, error) {
	e.mu.RLock()
	tree, ok := e.templates[name]
	e.mu.RUnlock()
	if ok {
		return tree, nil
	}

	markup, err := e.source.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	tree, err = e.Parse(ctx, markup)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.templates[name] = tree
	e.mu.Unlock()
	return tree, nil
}

// Invalidate drops cached templates. No names drops all of them.
func (e *Engine) Invalidate(names ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(names) == 0 {
		e.templates = make(map[string]*vdom.Element)
		return
	}
	for _, n := range names {
		delete(e.templates, n)
	}
}

// RenderTemplate renders the named template. When prev is nil and the
// engine has a store, the last stored render of name is used instead, and
// the new render is stored afterwards.
func (e *Engine) RenderTemplate(ctx context.Context, name string, prev *vdom.Element, component any) (*vdom.Element, error) {
	tree, err := e.Template(ctx, name)
	if err != nil {
		return nil, err
	}

	if prev == nil && e.store != nil {
		prev, err = e.store.Get(name)
		if err != nil {
			return nil, err
		}
	}

	root, err := e.Render(ctx, tree, prev, component, nil)
	if err != nil {
		return nil, err
	}

	if e.store != nil {
		if _, err := e.store.Put(name, root); err != nil {
			e.logger.Warn("snapshot not stored", "template", name, "error", err)
		}
	}
	return root, nil
}

// Templates lists the names available from the engine's source.
func (e *Engine) Templates(ctx context.Context) ([]string, error) {
	return e.source.List(ctx)
}

// Config returns the engine's file configuration.
func (e *Engine) Config() *config.Config { return e.cfg }

// Store returns the snapshot store, or nil.
func (e *Engine) Store() *store.Store { return e.store }

// Metrics returns the metrics collector, or nil.
func (e *Engine) Metrics() *metrics.Collector { return e.metrics }

// Logger returns the engine's logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

func (e *Engine) fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if code := errors.CodeOf(err); code != "" {
		span.SetAttributes(attribute.String("emtpl.error_code", code))
	}
}
