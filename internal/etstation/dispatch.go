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

package etstation

import etpool "github.com/nabbar/etbroker/internal/etpool"

// dispatch walks the chain from the position after producerPos, testing
// each station's (or parallel group's) predicate in turn. The first match
// receives the event; if nothing downstream matches, the event lands on
// grand central's used-list (its input queue) for a producer-side Get.
// quit interrupts a BlockFIFO wait on the admitting station; dispatch
// reports woken so the caller can surface that as a WAKEUP.
func (s *System) dispatch(producerPos int, idx int, quit func() bool) (woken bool) {
	h, herr := s.pool.Header(idx)
	if herr != nil {
		return false
	}
	data, _ := s.pool.Data(idx)

	s.mu.Lock()
	chain := make([]*Station, len(s.ordered))
	copy(chain, s.ordered)
	s.mu.Unlock()

	for _, st := range chain {
		if st.position <= producerPos || st == s.central {
			continue
		}
		if target := pickCandidate(st, h, data); target != nil {
			return s.admitTo(target, idx, quit)
		}
	}

	return s.admitTo(s.central, idx, quit)
}

// admitTo enqueues idx onto target's input list. A BlockCueDisplace policy
// may evict target's oldest queued event to make room, and BlockCueSkip may
// refuse idx itself rather than enqueue it; either way, the event that ends
// up with no home is freed back to the pool instead of being silently lost.
// A BlockFIFO target blocks until space opens; quit interrupts that wait.
func (s *System) admitTo(target *Station, idx int, quit func() bool) (woken bool) {
	evicted, has, woken := target.enqueue(idx, quit)
	if has {
		_ = s.pool.Free(evicted)
	}
	return woken
}

// pickCandidate tests st (and, if st is a parallel-group head, each of its
// members in round-robin order starting from the head) and returns whichever
// station actually accepts the event, or nil if none do.
func pickCandidate(st *Station, h etpool.Header, data []byte) *Station {
	if st.flowMode != FlowParallelHead {
		if accepts(st, h, data) {
			return st
		}
		return nil
	}

	st.mu.Lock()
	members := append([]*Station{st}, st.groupMembers...)
	start := st.rrNext % len(members)
	st.rrNext = (st.rrNext + 1) % len(members)
	st.mu.Unlock()

	for i := 0; i < len(members); i++ {
		cand := members[(start+i)%len(members)]
		if accepts(cand, h, data) {
			return cand
		}
	}
	return nil
}

func accepts(st *Station, h etpool.Header, data []byte) bool {
	st.mu.Lock()
	mode := st.selectMode
	pred := st.predicate
	words := st.selectWords
	prescale := st.prescale
	st.mu.Unlock()

	var matched bool
	switch mode {
	case SelectAll:
		matched = true
	case SelectMatch:
		matched = matchControl(h.Control, words)
	case SelectCustom:
		matched = pred != nil && pred(h, data)
	}
	if !matched {
		return false
	}
	st.mu.Lock()
	st.matchSeen++
	seen := st.matchSeen
	st.mu.Unlock()
	if prescale > 1 && seen%prescale != 0 {
		return false
	}
	return true
}

func matchControl(control []int64, words []int64) bool {
	if len(words) == 0 {
		return true
	}
	for _, w := range words {
		ok := false
		for _, c := range control {
			if c == w {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

