package dispatcher

import (
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"

	"github.com/dshills/dabbrev/internal/dispatcher/handler"
)

// Metrics records dispatch counts and latency into a metrics set.
type Metrics struct {
	set *metrics.Set
}

// NewMetrics creates a collector writing to set.
func NewMetrics(set *metrics.Set) *Metrics {
	return &Metrics{set: set}
}

// RecordDispatch records one dispatched action.
func (m *Metrics) RecordDispatch(actionName string, duration time.Duration, status handler.ResultStatus) {
	m.set.GetOrCreateCounter(fmt.Sprintf(`dispatch_total{action=%q,status=%q}`, actionName, status)).Inc()
	m.set.GetOrCreateHistogram(fmt.Sprintf(`dispatch_duration_seconds{action=%q}`, actionName)).Update(duration.Seconds())
}

// RecordPanic records a recovered handler panic.
func (m *Metrics) RecordPanic(actionName string) {
	m.set.GetOrCreateCounter(fmt.Sprintf(`dispatch_panics_total{action=%q}`, actionName)).Inc()
}

// DispatchCount returns how many times actionName finished with status.
func (m *Metrics) DispatchCount(actionName string, status handler.ResultStatus) uint64 {
	return m.set.GetOrCreateCounter(fmt.Sprintf(`dispatch_total{action=%q,status=%q}`, actionName, status)).Get()
}

// PanicCount returns the number of recovered panics for actionName.
func (m *Metrics) PanicCount(actionName string) uint64 {
	return m.set.GetOrCreateCounter(fmt.Sprintf(`dispatch_panics_total{action=%q}`, actionName)).Get()
}
