package render

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/emtpl/internal/config"
	"github.com/vango-dev/emtpl/internal/errors"
	"github.com/vango-dev/emtpl/pkg/expr"
	"github.com/vango-dev/emtpl/pkg/syntax"
	"github.com/vango-dev/emtpl/pkg/vdom"
)

// Config configures a Renderer. Zero fields take the defaults of package
// config.
type Config struct {
	// SimilarityThreshold is the minimum score for two unkeyed nodes to match.
	SimilarityThreshold float64

	// TextNearMiss is the score of two text nodes with different content.
	TextNearMiss float64

	// AttrPrecision is the number of decimals kept by the similarity score.
	AttrPrecision int

	// ContentTag is the placeholder tag replaced by Options.Content.
	ContentTag string

	// InjectionGuard and GuardedAttrs configure the default text handler.
	InjectionGuard string
	GuardedAttrs   []string

	// Handlers replaces the default handler chain.
	Handlers syntax.Chain

	// IDs generates virtual IDs. Nil means a generator with prefix "v".
	IDs *vdom.IDGenerator

	// Arena hands out the sessions used for list expansion. Nil means a
	// private arena.
	Arena *vdom.Arena

	Observer Observer
	Logger   *slog.Logger
}

// ConfigFrom maps file configuration to a renderer Config.
func ConfigFrom(c *config.Config) Config {
	return Config{
		SimilarityThreshold: c.Diff.SimilarityThreshold,
		TextNearMiss:        c.Diff.TextNearMiss,
		AttrPrecision:       c.Diff.AttrPrecision,
		ContentTag:          c.Render.ContentTag,
		InjectionGuard:      c.Render.InjectionGuard,
		GuardedAttrs:        c.Render.GuardedAttrs,
	}
}

// Stats summarizes one render.
type Stats struct {
	Duration time.Duration

	// Nodes counts the nodes of the rendered tree by status, root excluded.
	Nodes map[vdom.Status]int

	// Deleted counts previous nodes collected in DeleteElements.
	Deleted int
}

// Observer is notified about renders. Implementations must be safe for
// concurrent use.
type Observer interface {
	RenderDone(stats Stats, err error)
	InjectionBlocked(attr string)
}

// Options are per-render settings.
type Options struct {
	// RootPath is the path of the tree's root inside a larger tree.
	RootPath []int

	// Content replaces content placeholders.
	Content []*vdom.Element
}

// Renderer renders and diffs template trees. It is safe for concurrent use
// as long as concurrent renders use different previous trees.
type Renderer struct {
	threshold  float64
	nearMiss   float64
	precision  int
	contentTag string
	handlers   syntax.Chain
	ids        *vdom.IDGenerator
	arena      *vdom.Arena
	observer   Observer
	logger     *slog.Logger
}

// New creates a Renderer.
func New(cfg Config) *Renderer {
	r := &Renderer{
		threshold:  cfg.SimilarityThreshold,
		nearMiss:   cfg.TextNearMiss,
		precision:  cfg.AttrPrecision,
		contentTag: cfg.ContentTag,
		ids:        cfg.IDs,
		arena:      cfg.Arena,
		observer:   cfg.Observer,
		logger:     cfg.Logger,
	}
	if r.threshold == 0 {
		r.threshold = config.DefaultSimilarityThreshold
	}
	if r.nearMiss == 0 {
		r.nearMiss = config.DefaultTextNearMiss
	}
	if r.precision == 0 {
		r.precision = config.DefaultAttrPrecision
	}
	if r.contentTag == "" {
		r.contentTag = config.DefaultContentTag
	}
	if r.ids == nil {
		r.ids = vdom.NewIDGenerator("v")
	}
	if r.arena == nil {
		r.arena = vdom.NewArena()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	r.handlers = cfg.Handlers
	if r.handlers == nil {
		text := syntax.NewTextHandler(syntax.TextOptions{
			Guard:        cfg.InjectionGuard,
			GuardedAttrs: cfg.GuardedAttrs,
			Logger:       r.logger,
			OnBlocked:    r.blocked,
		})
		r.handlers = syntax.Chain{
			&syntax.EventHandler{Logger: r.logger},
			&syntax.DirectExprHandler{},
			&syntax.SpreadHandler{},
			text,
		}
	}
	return r
}

func (r *Renderer) blocked(attr, _ string) {
	if r.observer != nil {
		r.observer.InjectionBlocked(attr)
	}
}

// IDs returns the renderer's virtual ID generator.
func (r *Renderer) IDs() *vdom.IDGenerator { return r.ids }

// Render renders tree against component and diffs it against prev, which
// may be nil for a first render. tree is not modified; the annotated copy is
// returned.
func (r *Renderer) Render(tree, prev *vdom.Element, component any, opts *Options) (root *vdom.Element, err error) {
	start := time.Now()
	stats := Stats{}
	defer func() {
		stats.Duration = time.Since(start)
		if err == nil {
			stats.Nodes = vdom.CountStatus(root)
		}
		if r.observer != nil {
			r.observer.RenderDone(stats, err)
		}
	}()

	if tree == nil {
		return nil, errors.Newf(errors.CategoryRender, "nil tree")
	}
	if opts == nil {
		opts = &Options{}
	}
	if s := findScript(tree); s != nil {
		return nil, errors.New("R001").WithDetail("<" + s.TagName + "> at path " + pathString(s.Path))
	}

	root = tree.Clone()
	root.Path = append([]int(nil), opts.RootPath...)
	vdom.ResetPaths(root)
	vdom.Walk(root, func(n *vdom.Element) bool {
		n.TextChanged = false
		return true
	})

	if prev != nil {
		vdom.Walk(prev, func(n *vdom.Element) bool {
			n.Diffed = false
			return true
		})
		root.Status = vdom.StatusNormal
		root.Ref = prev.Ref
		root.VirtualID = prev.VirtualID
	}

	p := &pass{r: r, opts: opts, stats: &stats}
	scope := expr.NewScope(component, nil).With(root.Data)
	changed, err := p.children(root, prev, scope)
	if err != nil {
		return nil, err
	}
	if changed {
		root.InnerHTML = InnerHTML(root)
	}

	vdom.AssignVirtualIDs(root, r.ids)
	return root, nil
}

// findScript returns the first script element in the tree.
func findScript(root *vdom.Element) *vdom.Element {
	var found *vdom.Element
	vdom.Walk(root, func(n *vdom.Element) bool {
		if found != nil {
			return false
		}
		if strings.EqualFold(n.TagName, vdom.TagScript) {
			found = n
			return false
		}
		return true
	})
	return found
}

func pathString(path []int) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, p := range path {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(p))
	}
	b.WriteByte(']')
	return b.String()
}
