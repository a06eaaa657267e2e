/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package ntpdate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/zntpdate/zntpdate/ntp/adjust"
)

const metricsNamespace = "zntpdate"

// Stats collects metrics of a single run.
// It's passed to the client as client.Stats and can be dumped into node_exporter textfile.
type Stats struct {
	registry *prometheus.Registry

	requests  prometheus.Counter
	timeouts  prometheus.Counter
	responses prometheus.Counter
	errors    prometheus.Counter

	offset    prometheus.Gauge
	stratum   prometheus.Gauge
	daylight  prometheus.Gauge
	committed prometheus.Gauge
	success   prometheus.Gauge
	lastRun   prometheus.Gauge
}

func newCounter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{Namespace: metricsNamespace, Name: name, Help: help})
}

func newGauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: metricsNamespace, Name: name, Help: help})
}

// NewStats creates Stats with all metrics registered
func NewStats() *Stats {
	s := &Stats{
		registry:  prometheus.NewRegistry(),
		requests:  newCounter("requests_total", "Requests sent to the server"),
		timeouts:  newCounter("timeouts_total", "Requests which got no response in time"),
		responses: newCounter("responses_total", "Datagrams received from the server"),
		errors:    newCounter("errors_total", "Transport and protocol errors"),
		offset:    newGauge("offset_seconds", "Local clock minus adjusted server time"),
		stratum:   newGauge("stratum", "Stratum of the server"),
		daylight:  newGauge("summer_time", "1 if summer time hour was added"),
		committed: newGauge("clock_set", "1 if the system clock was set"),
		success:   newGauge("success", "1 if the run finished without error"),
		lastRun:   newGauge("last_run_timestamp_seconds", "When the run finished"),
	}
	s.registry.MustRegister(
		s.requests, s.timeouts, s.responses, s.errors,
		s.offset, s.stratum, s.daylight, s.committed, s.success, s.lastRun,
	)
	return s
}

// IncRequests atomically add 1 to the counter
func (s *Stats) IncRequests() { s.requests.Inc() }

// IncTimeouts atomically add 1 to the counter
func (s *Stats) IncTimeouts() { s.timeouts.Inc() }

// IncResponses atomically add 1 to the counter
func (s *Stats) IncResponses() { s.responses.Inc() }

// IncErrors atomically add 1 to the counter
func (s *Stats) IncErrors() { s.errors.Inc() }

// SetStratum records stratum of the server
func (s *Stats) SetStratum(stratum uint8) { s.stratum.Set(float64(stratum)) }

// SetResult records outcome of the adjustment
func (s *Stats) SetResult(r *adjust.Result) {
	s.offset.Set(r.Delta.Seconds())
	s.daylight.Set(boolToFloat(r.Daylight))
}

// SetCommitted records whether the clock was set
func (s *Stats) SetCommitted(committed bool) { s.committed.Set(boolToFloat(committed)) }

// Finish records overall run status
func (s *Stats) Finish(err error) {
	s.success.Set(boolToFloat(err == nil))
	s.lastRun.SetToCurrentTime()
}

// WriteFile atomically writes metrics in prometheus text format
func (s *Stats) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, s.registry)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
