// Copyright (c) 2023 Canonical Ltd
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License version 3 as
// published by the Free Software Foundation.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package metrics records firmware update metrics in a file that the
// Prometheus node exporter textfile collector picks up.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/termus/burnfw/internals/burner"
)

const namespace = "burnfw"

// ResultSuccess labels updates that completed.
const ResultSuccess = "success"

// Recorder collects the metrics of one firmware update run.
type Recorder struct {
	registry *prometheus.Registry

	progress    prometheus.Gauge
	payload     prometheus.Gauge
	duration    prometheus.Gauge
	completions *prometheus.CounterVec
}

// NewRecorder returns a recorder whose metrics carry the given partition
// label.
func NewRecorder(partition string) *Recorder {
	labels := prometheus.Labels{"partition": partition}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		progress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "update_progress_percent",
			Help:        "Percentage of the firmware payload written to the partition.",
			ConstLabels: labels,
		}),
		payload: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "update_payload_bytes",
			Help:        "Size of the firmware payload being written.",
			ConstLabels: labels,
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "update_duration_seconds",
			Help:        "Wall time taken by the last firmware update.",
			ConstLabels: labels,
		}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "updates_total",
			Help:        "Firmware updates by result.",
			ConstLabels: labels,
		}, []string{"result"}),
	}
	r.registry.MustRegister(r.progress, r.payload, r.duration, r.completions)
	return r
}

// Report implements progress.Reporter.
func (r *Recorder) Report(percent int) {
	r.progress.Set(float64(percent))
}

// SetPayload records the payload size of the image being written.
func (r *Recorder) SetPayload(size int64) {
	r.payload.Set(float64(size))
}

// Finish records the outcome of the update. A nil err counts as a success,
// anything else is labelled with its error kind.
func (r *Recorder) Finish(err error, elapsed time.Duration) {
	result := ResultSuccess
	if err != nil {
		result = string(burner.KindOf(err))
	}
	r.completions.WithLabelValues(result).Inc()
	r.duration.Set(elapsed.Seconds())
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile atomically writes the metrics to path in the text
// exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("cannot write metrics: %w", err)
	}
	return nil
}
