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
	etpool "github.com/nabbar/etbroker/internal/etpool"
	etstation "github.com/nabbar/etbroker/internal/etstation"

	prmsdk "github.com/prometheus/client_golang/prometheus"
)

// Broker is the concrete set of collectors a running etbrokerd exposes:
// pool utilization, per-station queue depth and attachment count, and the
// transfer counters attachments accumulate.
type Broker struct {
	reg *Registry

	poolFree   *prmsdk.GaugeVec
	poolUsed   *prmsdk.GaugeVec
	stationQ   *prmsdk.GaugeVec
	stationAtt *prmsdk.GaugeVec
	xferTotal  *prmsdk.CounterVec
}

// NewBroker registers every broker collector against a fresh registry.
func NewBroker() (*Broker, error) {
	b := &Broker{reg: NewRegistry()}

	c, err := b.reg.Register(NewMetrics("etbroker_pool_free_events", Gauge))
	if err != nil {
		return nil, err
	}
	b.poolFree = c.(*prmsdk.GaugeVec)

	c, err = b.reg.Register(NewMetrics("etbroker_pool_used_events", Gauge))
	if err != nil {
		return nil, err
	}
	b.poolUsed = c.(*prmsdk.GaugeVec)

	c, err = b.reg.Register(NewMetrics("etbroker_station_queue_depth", Gauge, "station"))
	if err != nil {
		return nil, err
	}
	b.stationQ = c.(*prmsdk.GaugeVec)

	c, err = b.reg.Register(NewMetrics("etbroker_station_attachments", Gauge, "station"))
	if err != nil {
		return nil, err
	}
	b.stationAtt = c.(*prmsdk.GaugeVec)

	c, err = b.reg.Register(NewMetrics("etbroker_event_transfers_total", Counter, "op"))
	if err != nil {
		return nil, err
	}
	b.xferTotal = c.(*prmsdk.CounterVec)

	return b, nil
}

// Registry exposes the underlying Registry, e.g. to mount Handler() on an
// HTTP introspection server.
func (b *Broker) Registry() *Registry {
	return b.reg
}

// ObservePool snapshots a pool's free/used event counts.
func (b *Broker) ObservePool(p *etpool.Pool) {
	free := p.FreeCount()
	total := p.NEvents()
	b.poolFree.WithLabelValues().Set(float64(free))
	b.poolUsed.WithLabelValues().Set(float64(total - free))
}

// ObserveStations snapshots every station's queue depth and attachment
// count under sys.
func (b *Broker) ObserveStations(sys *etstation.System) {
	for _, st := range sys.List() {
		b.stationQ.WithLabelValues(st.Name()).Set(float64(st.InputCount()))
		b.stationAtt.WithLabelValues(st.Name()).Set(float64(st.AttachCount()))
	}
}

// CountTransfer increments the named op's transfer counter ("get", "put",
// "dump", "new", "wakeup").
func (b *Broker) CountTransfer(op string) {
	b.xferTotal.WithLabelValues(op).Inc()
}
