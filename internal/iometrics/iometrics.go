// Package iometrics saves counters of a resolution run as a Prometheus
// text file, ready for the node exporter textfile collector.
package iometrics

import (
	"github.com/gnames/gntaxon/pkg/gntaxon"
	"github.com/prometheus/client_golang/prometheus"
)

// Calls is the number of lookups sent to one enricher.
type Calls struct {
	Enricher string
	Count    int64
}

// Write replaces the file at path with metrics of the run.
func Write(path string, st gntaxon.Stats, calls []Calls) error {
	reg := prometheus.NewRegistry()

	records := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gntaxon",
		Subsystem: "resolve",
		Name:      "records",
		Help:      "Raw taxon records processed during the last run by outcome.",
	}, []string{"outcome"})
	batches := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gntaxon",
		Subsystem: "resolve",
		Name:      "batches",
		Help:      "Committed batches of the last run.",
	})
	conflicts := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gntaxon",
		Subsystem: "resolve",
		Name:      "conflicts",
		Help:      "Resolution conflicts found during the last run.",
	})
	duration := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gntaxon",
		Subsystem: "resolve",
		Name:      "duration_seconds",
		Help:      "Duration of the last run.",
	})
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gntaxon",
		Subsystem: "enricher",
		Name:      "calls_total",
		Help:      "Lookups sent to each enricher during the last run.",
	}, []string{"enricher"})

	reg.MustRegister(records, batches, conflicts, duration, lookups)

	records.WithLabelValues("resolved").Set(float64(st.Resolved))
	records.WithLabelValues("no_match").Set(float64(st.NoMatch))
	records.WithLabelValues("error").Set(float64(st.Errors))
	records.WithLabelValues("skipped").Set(float64(st.Skipped))
	batches.Set(float64(st.Batches))
	conflicts.Set(float64(st.Conflicts))
	duration.Set(st.Elapsed.Seconds())
	for _, v := range calls {
		lookups.WithLabelValues(v.Enricher).Add(float64(v.Count))
	}

	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return MetricsWriteError(path, err)
	}
	return nil
}
