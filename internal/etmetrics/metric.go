/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package etmetrics

// Metric describes one named measurement independent of how it will be
// registered; MetricType.Register turns it into the matching Prometheus
// collector.
type Metric interface {
	GetName() string
	GetType() MetricType
	GetDesc() string
	GetLabel() []string
	GetBuckets() []float64
	GetObjectives() map[float64]float64
}

type metric struct {
	name       string
	kind       MetricType
	desc       string
	labels     []string
	buckets    []float64
	objectives map[float64]float64
}

// NewMetrics builds a Metric descriptor of the given name and type, with
// labels attached in declaration order. The concrete return type lets
// callers chain WithDesc/WithBuckets/WithObjectives before handing the
// result to a Registry as a Metric.
func NewMetrics(name string, kind MetricType, labels ...string) *metric {
	return &metric{name: name, kind: kind, labels: labels}
}

func (m *metric) GetName() string                    { return m.name }
func (m *metric) GetType() MetricType                { return m.kind }
func (m *metric) GetDesc() string                    { return m.desc }
func (m *metric) GetLabel() []string                 { return m.labels }
func (m *metric) GetBuckets() []float64              { return m.buckets }
func (m *metric) GetObjectives() map[float64]float64 { return m.objectives }

// WithDesc and WithBuckets/WithObjectives return a copy of m carrying the
// given field, for the common case of chaining onto NewMetrics.
func (m *metric) WithDesc(desc string) *metric {
	cp := *m
	cp.desc = desc
	return &cp
}

func (m *metric) WithBuckets(buckets []float64) *metric {
	cp := *m
	cp.buckets = buckets
	return &cp
}

func (m *metric) WithObjectives(objectives map[float64]float64) *metric {
	cp := *m
	cp.objectives = objectives
	return &cp
}
