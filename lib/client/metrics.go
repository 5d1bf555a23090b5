// splunkctl
// Copyright (C) 2025  splunkctl authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package client

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector observes client traffic keyed by (route template,
// method). Implementations must be safe for concurrent use.
type MetricsCollector interface {
	RecordRequest(route, method string)
	RecordRequestDuration(route, method string, elapsed time.Duration, status int)
	RecordRetry(route, method string, attempt int)
	RecordError(route, method, category string)
}

// nopCollector discards all observations.
type nopCollector struct{}

// NewNopCollector returns a collector that records nothing.
func NewNopCollector() MetricsCollector { return nopCollector{} }

func (nopCollector) RecordRequest(string, string)                                {}
func (nopCollector) RecordRequestDuration(string, string, time.Duration, int)    {}
func (nopCollector) RecordRetry(string, string, int)                             {}
func (nopCollector) RecordError(route, method, category string)                  {}

// PrometheusCollector records client traffic into prometheus vectors.
// Route labels carry the normalized template, never raw resource names,
// keeping cardinality bounded.
type PrometheusCollector struct {
	requests  *prometheus.CounterVec
	durations *prometheus.HistogramVec
	retries   *prometheus.CounterVec
	errors    *prometheus.CounterVec
}

// NewPrometheusCollector builds a collector and registers its vectors
// with reg. Pass prometheus.NewRegistry() in tests to avoid collisions
// with the default registry.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	c := &PrometheusCollector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "splunkctl",
			Name:      "client_requests_total",
			Help:      "Requests issued to splunkd, by route template and method.",
		}, []string{"route", "method"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "splunkctl",
			Name:      "client_request_duration_seconds",
			Help:      "Request latency, by route template, method and status.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"route", "method", "status"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "splunkctl",
			Name:      "client_retries_total",
			Help:      "Retry attempts, by route template and method.",
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "splunkctl",
			Name:      "client_errors_total",
			Help:      "Errors by route template, method and category.",
		}, []string{"route", "method", "category"}),
	}
	for _, col := range []prometheus.Collector{c.requests, c.durations, c.retries, c.errors} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordRequest implements MetricsCollector.
func (c *PrometheusCollector) RecordRequest(route, method string) {
	c.requests.WithLabelValues(route, method).Inc()
}

// RecordRequestDuration implements MetricsCollector.
func (c *PrometheusCollector) RecordRequestDuration(route, method string, elapsed time.Duration, status int) {
	c.durations.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// RecordRetry implements MetricsCollector.
func (c *PrometheusCollector) RecordRetry(route, method string, attempt int) {
	c.retries.WithLabelValues(route, method).Inc()
}

// RecordError implements MetricsCollector.
func (c *PrometheusCollector) RecordError(route, method, category string) {
	c.errors.WithLabelValues(route, method, category).Inc()
}
