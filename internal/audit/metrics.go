package audit

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts audit-trail activity for the stats surface.
type Metrics struct {
	Appends        prometheus.Counter
	AppendFailures *prometheus.CounterVec
	RowsRead       prometheus.Counter
}

// NewMetrics registers the audit counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Appends: factory.NewCounter(prometheus.CounterOpts{
			Name: "clogni_appends_total",
			Help: "Total number of records appended to the audit trail",
		}),
		AppendFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clogni_append_failures_total",
			Help: "Total number of failed appends, by error code",
		}, []string{"code"}),
		RowsRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "clogni_rows_read_total",
			Help: "Total number of index rows returned by read operations",
		}),
	}
}

func (m *Metrics) observeAppend(err error) {
	if m == nil {
		return
	}
	if err == nil {
		m.Appends.Inc()
		return
	}
	code := "UNKNOWN"
	var ae *Error
	if errors.As(err, &ae) {
		code = string(ae.Code)
	}
	m.AppendFailures.WithLabelValues(code).Inc()
}

func (m *Metrics) observeRead(rows int) {
	if m == nil {
		return
	}
	m.RowsRead.Add(float64(rows))
}
