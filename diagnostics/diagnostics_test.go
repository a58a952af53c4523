package diagnostics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type countingSink struct{ n int }

func (c *countingSink) Observe(Record) { c.n++ }

type panickingSink struct{}

func (panickingSink) Observe(Record) { panic("boom") }

func TestChainFansOutToEverySink(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	chain := Chain{a, nil, b}
	chain.Observe(Record{Status: "StateChanged"})
	if a.n != 1 || b.n != 1 {
		t.Fatalf("a.n=%d b.n=%d, want 1 and 1", a.n, b.n)
	}
}

func TestChainSurvivesAPanickingSink(t *testing.T) {
	a := &countingSink{}
	chain := Chain{panickingSink{}, a}
	chain.Observe(Record{})
	if a.n != 1 {
		t.Fatal("a sink after a panicking one should still observe")
	}
}

func TestMetricsSinkRegistersAndCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := NewMetricsSink(reg)
	sink.Observe(Record{Status: "StateChanged", Duration: time.Millisecond})
	sink.Observe(Record{Status: "Fault", Fault: true, Duration: time.Millisecond})

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatal("expected at least one registered metric family")
	}
	var faults float64 = -1
	for _, mf := range mfs {
		if mf.GetName() == "fsm_faults_total" && len(mf.GetMetric()) == 1 {
			faults = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	if faults != 1 {
		t.Fatalf("fsm_faults_total = %v, want 1", faults)
	}
}

func TestLoggingSinkNilSafety(t *testing.T) {
	var s *LoggingSink
	s.Observe(Record{}) // must not panic
}
