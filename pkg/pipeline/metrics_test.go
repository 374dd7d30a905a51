package pipeline

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/go-drift/canopy/pkg/element"
	"github.com/go-drift/canopy/pkg/graphics"
	ctesting "github.com/go-drift/canopy/pkg/testing"
)

func TestPrometheusMetrics(t *testing.T) {
	_ = captureRenderErrors(t)
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics(reg)
	if err != nil {
		t.Fatalf("NewPrometheusMetrics: %v", err)
	}

	f := newFixture(t)
	f.add(f.root, "a", lineAt(1))
	f.add(f.root, "b", lineAt(2))
	f.add(f.root, "broken", func() (element.DrawFunc, error) { panic("x") })
	f.add(f.root, "hidden", lineAt(3)).SetHidden(true)
	f.add(f.root, "late", func() (element.DrawFunc, error) {
		return func(graphics.Painter) { panic("late") }, nil
	})

	p := New(WithMetrics(m))
	for i := 0; i < 2; i++ {
		if _, err := p.Run(context.Background(), f.tree, ctesting.NewRecordingPainter(graphics.Size{})); err != nil {
			t.Fatal(err)
		}
	}

	checks := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"frames", m.frames, 2},
		{"commands", m.commands, 6},
		{"skipped", m.skipped, 2},
		{"interrupted", m.interrupted, 0},
		{"collect faults", m.faults.WithLabelValues("collect"), 2},
		{"execute faults", m.faults.WithLabelValues("execute"), 2},
	}
	for _, c := range checks {
		if got := testutil.ToFloat64(c.c); got != c.want {
			t.Errorf("%s = %v, want %v", c.name, got, c.want)
		}
	}

	if n := testutil.CollectAndCount(m.duration); n != 2 {
		t.Errorf("duration series = %d, want 2 (collect and execute)", n)
	}
	if _, err := NewPrometheusMetrics(reg); err == nil {
		t.Error("registering twice should fail")
	}
}

func TestPrometheusMetricsUnregistered(t *testing.T) {
	m, err := NewPrometheusMetrics(nil)
	if err != nil {
		t.Fatal(err)
	}
	m.ObserveCollect(&Frame{Interrupted: true}, 0)
	if got := testutil.ToFloat64(m.interrupted); got != 1 {
		t.Errorf("interrupted = %v, want 1", got)
	}
}
