package logmanager

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	sinkAggregator  = "cloudwatch"
	sinkObjectStore = "s3"
)

type Metrics struct {
	recordsWritten *prometheus.CounterVec
	exports        *prometheus.CounterVec
	filesDeleted   prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		recordsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logmanager_records_written_total",
			Help: "Log records appended to daily files.",
		}, []string{"stream"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logmanager_exports_total",
			Help: "Daily log exports by sink and result.",
		}, []string{"sink", "result"}),
		filesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logmanager_local_files_deleted_total",
			Help: "Daily files removed after a confirmed upload.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.recordsWritten, m.exports, m.filesDeleted)
	}
	return m
}

func (m *Metrics) recordWritten(kind StreamKind) {
	if m == nil {
		return
	}
	m.recordsWritten.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) exportDone(sink string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.exports.WithLabelValues(sink, result).Inc()
}

func (m *Metrics) fileDeleted() {
	if m == nil {
		return
	}
	m.filesDeleted.Inc()
}
