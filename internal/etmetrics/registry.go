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

import (
	"net/http"

	prmsdk "github.com/prometheus/client_golang/prometheus"
	prmhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry wraps a dedicated prometheus.Registry so a broker process never
// collides with whatever the default global registry is used for.
type Registry struct {
	reg *prmsdk.Registry
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{reg: prmsdk.NewRegistry()}
}

// Register builds the collector for m and registers it, returning the raw
// collector so the caller can keep a typed handle (CounterVec, GaugeVec,
// ...) for later Inc/Set/Observe calls.
func (r *Registry) Register(m Metric) (prmsdk.Collector, error) {
	c, err := m.GetType().Register(m)
	if err != nil {
		return nil, err
	}
	if err := r.reg.Register(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Handler returns the promhttp handler serving this registry's collectors.
func (r *Registry) Handler() http.Handler {
	return prmhttp.HandlerFor(r.reg, prmhttp.HandlerOpts{})
}
