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

package etmetrics_test

import (
	etmetrics "github.com/nabbar/etbroker/internal/etmetrics"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	prmsdk "github.com/prometheus/client_golang/prometheus"
)

var _ = Describe("MetricType registration", func() {
	It("builds a CounterVec for Counter", func() {
		m := etmetrics.NewMetrics("test_counter_total", etmetrics.Counter, "op")
		c, err := etmetrics.Counter.Register(m)
		Expect(err).To(BeNil())
		Expect(c).To(BeAssignableToTypeOf(&prmsdk.CounterVec{}))
	})

	It("builds a GaugeVec for Gauge", func() {
		m := etmetrics.NewMetrics("test_gauge", etmetrics.Gauge, "station")
		c, err := etmetrics.Gauge.Register(m)
		Expect(err).To(BeNil())
		Expect(c).To(BeAssignableToTypeOf(&prmsdk.GaugeVec{}))
	})

	It("builds a HistogramVec for Histogram", func() {
		m := etmetrics.NewMetrics("test_hist", etmetrics.Histogram).WithBuckets([]float64{0.1, 0.5, 1})
		c, err := etmetrics.Histogram.Register(m)
		Expect(err).To(BeNil())
		Expect(c).To(BeAssignableToTypeOf(&prmsdk.HistogramVec{}))
	})

	It("builds a SummaryVec for Summary", func() {
		m := etmetrics.NewMetrics("test_summary", etmetrics.Summary).WithObjectives(map[float64]float64{0.5: 0.05})
		c, err := etmetrics.Summary.Register(m)
		Expect(err).To(BeNil())
		Expect(c).To(BeAssignableToTypeOf(&prmsdk.SummaryVec{}))
	})

	It("rejects None", func() {
		m := etmetrics.NewMetrics("test_none", etmetrics.None)
		_, err := etmetrics.None.Register(m)
		Expect(err).ToNot(BeNil())
	})
})

var _ = Describe("Registry", func() {
	It("registers a metric and serves it through Handler", func() {
		reg := etmetrics.NewRegistry()
		c, err := reg.Register(etmetrics.NewMetrics("test_registry_counter", etmetrics.Counter))
		Expect(err).To(BeNil())
		Expect(c).ToNot(BeNil())
		Expect(reg.Handler()).ToNot(BeNil())
	})

	It("rejects a duplicate registration", func() {
		reg := etmetrics.NewRegistry()
		_, err := reg.Register(etmetrics.NewMetrics("dup", etmetrics.Counter))
		Expect(err).To(BeNil())
		_, err = reg.Register(etmetrics.NewMetrics("dup", etmetrics.Counter))
		Expect(err).ToNot(BeNil())
	})
})
