// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package snmp

import (
	"sync"
	"sync/atomic"
	"time"
)

// Counter is a simple atomic counter.
type Counter struct {
	value int64
}

// Add adds a value to the counter.
func (c *Counter) Add(delta int64) {
	atomic.AddInt64(&c.value, delta)
}

// Value returns the current counter value.
func (c *Counter) Value() int64 {
	return atomic.LoadInt64(&c.value)
}

// Gauge is a simple atomic gauge that can go up and down.
type Gauge struct {
	value int64
}

// Add adds a value to the gauge.
func (g *Gauge) Add(delta int64) {
	atomic.AddInt64(&g.value, delta)
}

// Value returns the current gauge value.
func (g *Gauge) Value() int64 {
	return atomic.LoadInt64(&g.value)
}

// LatencyHistogram tracks min/max/avg of observed latencies in milliseconds.
type LatencyHistogram struct {
	mu    sync.Mutex
	count int64
	sum   int64
	min   int64
	max   int64
}

// NewLatencyHistogram creates a new latency histogram.
func NewLatencyHistogram() *LatencyHistogram {
	return &LatencyHistogram{min: -1}
}

// Observe records a latency observation in milliseconds.
func (h *LatencyHistogram) Observe(latencyMs int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.count++
	h.sum += latencyMs
	if h.min < 0 || latencyMs < h.min {
		h.min = latencyMs
	}
	if latencyMs > h.max {
		h.max = latencyMs
	}
}

// ObserveDuration records a duration.
func (h *LatencyHistogram) ObserveDuration(d time.Duration) {
	h.Observe(d.Milliseconds())
}

// Stats returns histogram statistics.
func (h *LatencyHistogram) Stats() LatencyStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	stats := LatencyStats{
		Count: h.count,
		Sum:   h.sum,
		Min:   h.min,
		Max:   h.max,
	}
	if h.count > 0 {
		stats.Avg = float64(h.sum) / float64(h.count)
	} else {
		stats.Min = 0
	}
	return stats
}

// LatencyStats contains latency statistics.
type LatencyStats struct {
	Count int64
	Sum   int64
	Min   int64
	Max   int64
	Avg   float64
}

// Metrics contains client metrics.
type Metrics struct {
	RequestsSent      Counter
	ResponsesReceived Counter
	Timeouts          Counter
	Retries           Counter
	Errors            Counter
	AgentErrors       Counter

	SetRequests  Counter
	VarbindsSent Counter

	RequestLatency *LatencyHistogram

	ConnectionAttempts Counter
	ActiveConnections  Gauge

	StartTime time.Time
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestLatency: NewLatencyHistogram(),
		StartTime:      time.Now(),
	}
}

// Snapshot returns a copy of the current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		RequestsSent:       m.RequestsSent.Value(),
		ResponsesReceived:  m.ResponsesReceived.Value(),
		Timeouts:           m.Timeouts.Value(),
		Retries:            m.Retries.Value(),
		Errors:             m.Errors.Value(),
		AgentErrors:        m.AgentErrors.Value(),
		SetRequests:        m.SetRequests.Value(),
		VarbindsSent:       m.VarbindsSent.Value(),
		RequestLatency:     m.RequestLatency.Stats(),
		ConnectionAttempts: m.ConnectionAttempts.Value(),
		ActiveConnections:  m.ActiveConnections.Value(),
		Uptime:             time.Since(m.StartTime),
	}
}

// MetricsSnapshot is a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	RequestsSent       int64
	ResponsesReceived  int64
	Timeouts           int64
	Retries            int64
	Errors             int64
	AgentErrors        int64
	SetRequests        int64
	VarbindsSent       int64
	RequestLatency     LatencyStats
	ConnectionAttempts int64
	ActiveConnections  int64
	Uptime             time.Duration
}
