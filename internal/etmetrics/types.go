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

// Package etmetrics exposes the broker's Prometheus surface: pool
// utilization, station queue depth, attachment count, and per-operation
// transfer counters.
package etmetrics

import (
	"fmt"

	prmsdk "github.com/prometheus/client_golang/prometheus"
)

// MetricType names one of the four Prometheus collector shapes a Metric
// can be registered as.
type MetricType uint8

const (
	None MetricType = iota
	Counter
	Gauge
	Histogram
	Summary
)

// Register builds the prometheus.Collector matching t for the given
// metric description.
func (t MetricType) Register(m Metric) (prmsdk.Collector, error) {
	opts := prmsdk.Opts{
		Name: m.GetName(),
		Help: m.GetDesc(),
	}

	switch t {
	case Counter:
		return prmsdk.NewCounterVec(prmsdk.CounterOpts(opts), m.GetLabel()), nil
	case Gauge:
		return prmsdk.NewGaugeVec(prmsdk.GaugeOpts(opts), m.GetLabel()), nil
	case Histogram:
		return prmsdk.NewHistogramVec(prmsdk.HistogramOpts{
			Name:    opts.Name,
			Help:    opts.Help,
			Buckets: m.GetBuckets(),
		}, m.GetLabel()), nil
	case Summary:
		return prmsdk.NewSummaryVec(prmsdk.SummaryOpts{
			Name:       opts.Name,
			Help:       opts.Help,
			Objectives: m.GetObjectives(),
		}, m.GetLabel()), nil
	default:
		return nil, fmt.Errorf("etmetrics: unsupported metric type %d for %q", t, m.GetName())
	}
}
