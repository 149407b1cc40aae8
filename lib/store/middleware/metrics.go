package middleware

import (
	"fmt"
	"github.com/ValentinKolb/localdb/lib/store"
	"github.com/VictoriaMetrics/metrics"
	"time"
)

// Metrics counts calls and errors per direction and records call durations.
//
// Exposed series (all in the given set):
//
//	localdb_ops_total{direction="get|set"}
//	localdb_errors_total{direction="get|set"}
//	localdb_op_duration_seconds{direction="get|set"}
type Metrics struct {
	set *metrics.Set
}

// NewMetrics creates the metrics middleware. A nil set creates a new one.
// Register it for both directions to see reads and writes.
func NewMetrics(set *metrics.Set) *Metrics {
	if set == nil {
		set = metrics.NewSet()
	}
	return &Metrics{set: set}
}

func (m *Metrics) Handle(call *store.Call, next store.Handler) (any, error) {
	start := time.Now()
	m.counter("localdb_ops_total", call.Direction).Inc()

	value, err := next(call)

	m.set.GetOrCreateSummary(series("localdb_op_duration_seconds", call.Direction)).UpdateDuration(start)
	if err != nil {
		m.counter("localdb_errors_total", call.Direction).Inc()
	}
	return value, err
}

// Ops returns the number of calls seen for the direction
func (m *Metrics) Ops(dir store.Direction) uint64 {
	return m.counter("localdb_ops_total", dir).Get()
}

// Errors returns the number of failed calls for the direction
func (m *Metrics) Errors(dir store.Direction) uint64 {
	return m.counter("localdb_errors_total", dir).Get()
}

// Set returns the underlying metrics set, e.g. for WritePrometheus
func (m *Metrics) Set() *metrics.Set {
	return m.set
}

func (m *Metrics) counter(name string, dir store.Direction) *metrics.Counter {
	return m.set.GetOrCreateCounter(series(name, dir))
}

func series(name string, dir store.Direction) string {
	return fmt.Sprintf(`%s{direction=%q}`, name, string(dir))
}
