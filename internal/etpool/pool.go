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

package etpool

import (
	"sync"
	"time"

	"github.com/bits-and-blooms/bitset"

	etc "github.com/nabbar/etbroker/internal/etcode"
)

// GroupQuota describes one event group by its size: Count consecutive
// indices of the pool.
type GroupQuota struct {
	Count int
}

type group struct {
	start, end int // half-open [start, end) range of pool indices
}

// Pool is the fixed array of event descriptors backed by a contiguous data
// region. Indices identify events everywhere, including across the wire.
type Pool struct {
	mu       sync.Mutex
	cond     *sync.Cond
	free     *bitset.BitSet // 1 == free (on grand-central new-list)
	headers  []Header
	data     [][]byte
	groups   []group
	nselects int

	tmu     sync.Mutex
	tempSeq int
	temp    map[int][]byte
	tempHdr map[int]Header
}

// New builds a pool of nevents events of eventsize bytes each, split across
// the given group quotas (which must sum to nevents), with nselects control
// integers per event header.
func New(nevents int, eventsize int, quotas []GroupQuota, nselects int) (*Pool, etc.Error) {
	if nevents <= 0 || eventsize <= 0 {
		return nil, etc.BadArg.Errorf("nevents and eventsize must be positive")
	}

	sum := 0
	for _, q := range quotas {
		sum += q.Count
	}
	if len(quotas) == 0 {
		quotas = []GroupQuota{{Count: nevents}}
		sum = nevents
	}
	if sum != nevents {
		return nil, etc.BadArg.Errorf("group quotas sum to %d, want %d", sum, nevents)
	}

	p := &Pool{
		free:     bitset.New(uint(nevents)),
		headers:  make([]Header, nevents),
		data:     make([][]byte, nevents),
		groups:   make([]group, len(quotas)),
		nselects: nselects,
		temp:     make(map[int][]byte),
		tempHdr:  make(map[int]Header),
	}
	p.cond = sync.NewCond(&p.mu)

	start := 0
	for gi, q := range quotas {
		p.groups[gi] = group{start: start, end: start + q.Count}
		for i := start; i < start+q.Count; i++ {
			p.data[i] = make([]byte, eventsize)
			p.headers[i] = Header{
				Place:   i,
				MemSize: uint32(eventsize),
				Owner:   SystemOwner,
				Control: make([]int64, nselects),
				Group:   gi,
			}
			p.free.Set(uint(i))
		}
		start += q.Count
	}

	return p, nil
}

// NEvents returns the total number of events in the pool.
func (p *Pool) NEvents() int {
	return len(p.headers)
}

// NGroups returns the number of configured groups.
func (p *Pool) NGroups() int {
	return len(p.groups)
}

// NSelects returns the configured select-words width.
func (p *Pool) NSelects() int {
	return p.nselects
}

// EventSize returns the fixed per-event capacity.
func (p *Pool) EventSize() int {
	if len(p.data) == 0 {
		return 0
	}
	return len(p.data[0])
}

// Alloc draws up to count free events from the given group's new-list.
// SLEEP blocks until at least one is free (subject to quit); TIMED blocks
// until deadline; ASYNC returns immediately with whatever is free (possibly
// none, which is reported as EMPTY rather than partial-zero silently).
func (p *Pool) Alloc(group int, count int, mode AllocMode, deadline time.Time, quit func() bool) ([]int, etc.Error) {
	if group < 0 || group >= len(p.groups) {
		return nil, etc.BadArg.Errorf("unknown group %d", group)
	}
	if count <= 0 {
		return nil, etc.BadArg.Errorf("count must be positive")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		got := p.takeFreeLocked(group, count)
		if len(got) > 0 {
			return got, nil
		}

		if quit != nil && quit() {
			return nil, etc.Wakeup.Error()
		}

		switch mode {
		case AllocAsync:
			return nil, etc.Empty.Error()
		case AllocTimed:
			if time.Now().After(deadline) {
				return nil, etc.Timeout.Error()
			}
			p.waitUntilLocked(deadline)
		default: // AllocSleep
			p.cond.Wait()
		}
	}
}

func (p *Pool) waitUntilLocked(deadline time.Time) {
	d := time.Until(deadline)
	if d <= 0 {
		return
	}
	// sync.Cond has no timed wait; approximate with a short unlock/sleep/relock
	// slice so callers re-check their own deadline on each loop iteration.
	const slice = 50 * time.Millisecond
	if d > slice {
		d = slice
	}
	p.mu.Unlock()
	time.Sleep(d)
	p.mu.Lock()
}

func (p *Pool) takeFreeLocked(groupIdx int, count int) []int {
	g := p.groups[groupIdx]
	out := make([]int, 0, count)
	for i := uint(g.start); i < uint(g.end) && len(out) < count; i++ {
		if p.free.Test(i) {
			p.free.Clear(i)
			out = append(out, int(i))
		}
	}
	return out
}

// Free returns an event to its group's new-list (conceptually; callers in
// etstation move it through grand-central used first per the dispatch
// algorithm — Free is the low-level primitive that clears the owner and
// marks the bit free again).
func (p *Pool) Free(index int) etc.Error {
	if index < 0 {
		return p.freeTemp(index)
	}
	if index >= len(p.headers) {
		return etc.BadArg.Errorf("index %d out of range", index)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.headers[index].Owner = SystemOwner
	p.headers[index].Length = 0
	p.free.Set(uint(index))
	p.cond.Broadcast()
	return nil
}

// Header returns a copy of the event's metadata.
func (p *Pool) Header(index int) (Header, etc.Error) {
	if index < 0 {
		return p.tempHeader(index)
	}
	if index >= len(p.headers) {
		return Header{}, etc.BadArg.Errorf("index %d out of range", index)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.headers[index], nil
}

// SetHeader replaces the stored metadata for index, preserving Place.
func (p *Pool) SetHeader(index int, h Header) etc.Error {
	if index < 0 {
		p.tmu.Lock()
		h.Place = index
		p.tempHdr[index] = h
		p.tmu.Unlock()
		return nil
	}
	if index >= len(p.headers) {
		return etc.BadArg.Errorf("index %d out of range", index)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	h.Place = index
	p.headers[index] = h
	return nil
}

// Data returns the mutable payload slice for index, truncated to capacity.
func (p *Pool) Data(index int) ([]byte, etc.Error) {
	if index < 0 {
		p.tmu.Lock()
		defer p.tmu.Unlock()
		d, ok := p.temp[index]
		if !ok {
			return nil, etc.BadArg.Errorf("unknown temp index %d", index)
		}
		return d, nil
	}
	if index >= len(p.data) {
		return nil, etc.BadArg.Errorf("index %d out of range", index)
	}
	return p.data[index], nil
}

// AllocOversized creates a one-off temp-pool event sized to fit a payload
// larger than the pool's fixed eventsize. It never consumes a pool slot.
func (p *Pool) AllocOversized(size int) (int, etc.Error) {
	if size <= 0 {
		return 0, etc.BadArg.Errorf("size must be positive")
	}
	p.tmu.Lock()
	defer p.tmu.Unlock()
	p.tempSeq--
	idx := p.tempSeq
	p.temp[idx] = make([]byte, size)
	p.tempHdr[idx] = Header{
		Place:   idx,
		MemSize: uint32(size),
		Owner:   SystemOwner,
		Temp:    TempOversized,
		Control: make([]int64, p.nselects),
	}
	return idx, nil
}

func (p *Pool) freeTemp(index int) etc.Error {
	p.tmu.Lock()
	defer p.tmu.Unlock()
	delete(p.temp, index)
	delete(p.tempHdr, index)
	return nil
}

func (p *Pool) tempHeader(index int) (Header, etc.Error) {
	p.tmu.Lock()
	defer p.tmu.Unlock()
	h, ok := p.tempHdr[index]
	if !ok {
		return Header{}, etc.BadArg.Errorf("unknown temp index %d", index)
	}
	return h, nil
}

// FreeCount returns how many events are currently unallocated, for
// conservation checks and metrics.
func (p *Pool) FreeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int(p.free.Count())
}
