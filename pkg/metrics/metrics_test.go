package metrics

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/emtpl/internal/errors"
	"github.com/vango-dev/emtpl/pkg/render"
	"github.com/vango-dev/emtpl/pkg/vdom"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRenderDone(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()))

	c.RenderDone(render.Stats{
		Duration: time.Millisecond,
		Nodes:    map[vdom.Status]int{vdom.StatusAppend: 3, vdom.StatusUpdate: 1},
		Deleted:  2,
	}, nil)
	c.RenderDone(render.Stats{}, errors.New("C001"))
	c.RenderDone(render.Stats{}, stderrors.New("plain"))

	if got := metricCounterValue(t, c.rendersTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("renders_total{success} = %v, want 1", got)
	}
	if got := metricCounterValue(t, c.rendersTotal.WithLabelValues("error")); got != 2 {
		t.Errorf("renders_total{error} = %v, want 2", got)
	}
	if got := metricCounterValue(t, c.nodesTotal.WithLabelValues("APPEND")); got != 3 {
		t.Errorf("nodes_total{APPEND} = %v, want 3", got)
	}
	if got := metricCounterValue(t, c.deletedTotal); got != 2 {
		t.Errorf("deleted_nodes_total = %v, want 2", got)
	}
	if got := metricCounterValue(t, c.errorsTotal.WithLabelValues("C001")); got != 1 {
		t.Errorf("errors_total{C001} = %v, want 1", got)
	}
	if got := metricCounterValue(t, c.errorsTotal.WithLabelValues("unknown")); got != 1 {
		t.Errorf("errors_total{unknown} = %v, want 1", got)
	}
	if got := metricHistogramCount(t, c.renderDuration); got != 3 {
		t.Errorf("render_duration_seconds count = %d, want 3", got)
	}
}

func TestObserverWiring(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()), WithNamespace("test"))
	r := render.New(render.Config{Observer: c})

	tree := vdom.NewElement(vdom.TagRoot)
	a := vdom.NewElement("a", vdom.Prop{Key: "href", Value: "{{url}}"})
	tree.AppendChild(a)

	if _, err := r.Render(tree, nil, map[string]any{"url": "javascript:void(0)"}, nil); err != nil {
		t.Fatal(err)
	}
	if got := metricCounterValue(t, c.injectionsBlocked.WithLabelValues("href")); got != 1 {
		t.Errorf("injections_blocked_total{href} = %v, want 1", got)
	}
	if got := metricCounterValue(t, c.nodesTotal.WithLabelValues("APPEND")); got != 1 {
		t.Errorf("nodes_total{APPEND} = %v, want 1", got)
	}
}

func TestSessions(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()))
	c.SessionOpened()
	c.SessionOpened()
	c.SessionClosed()
	c.WebSocketError("read")

	if got := metricGaugeValue(t, c.activeSessions); got != 1 {
		t.Errorf("active_sessions = %v, want 1", got)
	}
	if got := metricCounterValue(t, c.wsErrors.WithLabelValues("read")); got != 1 {
		t.Errorf("websocket_errors_total{read} = %v, want 1", got)
	}
}

func TestInit(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(WithRegistry(reg))
	c.Init()

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range families {
		if f.GetName() == "emtpl_nodes_total" && len(f.GetMetric()) != 6 {
			t.Errorf("emtpl_nodes_total series = %d, want 6", len(f.GetMetric()))
		}
	}
}
