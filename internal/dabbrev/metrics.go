package dabbrev

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"
)

// Metrics records expansion outcomes into a metrics set.
// A nil *Metrics records nothing.
type Metrics struct {
	set *metrics.Set
}

// NewMetrics registers expansion metrics in set.
func NewMetrics(set *metrics.Set) *Metrics {
	return &Metrics{set: set}
}

func (m *Metrics) outcome(o Outcome) {
	if m == nil {
		return
	}
	m.set.GetOrCreateCounter(fmt.Sprintf(`dabbrev_expand_total{outcome=%q}`, o)).Inc()
}

func (m *Metrics) candidates(n int) {
	if m == nil {
		return
	}
	m.set.GetOrCreateHistogram("dabbrev_candidates").Update(float64(n))
}

// ExpandCount returns how many triggers ended with outcome o.
func (m *Metrics) ExpandCount(o Outcome) uint64 {
	if m == nil {
		return 0
	}
	return m.set.GetOrCreateCounter(fmt.Sprintf(`dabbrev_expand_total{outcome=%q}`, o)).Get()
}
