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

import "time"

// enqueue admits idx to the station's input list under its block policy.
// BlockCueSkip drops the newest arrival once the cue is full; BlockCueDisplace
// evicts the oldest queued entry to make room instead, returning it so the
// caller can recycle it (spec's non-blocking cue semantics). BlockFIFO (the
// zero value) blocks the caller until a dequeue opens a slot, honoring quit
// the same way dequeue does.
func (s *Station) enqueue(idx int, quit func() bool) (evicted int, hasEvicted, woken bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.cue > 0 && len(s.input) >= s.cue {
		switch s.blockMode {
		case BlockCueSkip:
			return idx, true, false
		case BlockCueDisplace:
			evicted = s.input[0]
			s.input = s.input[1:]
			hasEvicted = true
		default: // BlockFIFO
			if quit != nil && quit() {
				return 0, false, true
			}
			s.cond.Wait()
		}
	}

	s.input = append(s.input, idx)
	s.cond.Broadcast()
	return evicted, hasEvicted, woken
}

// dequeue removes and returns the head of the input list, blocking per mode.
// Shrinking the list broadcasts, waking any BlockFIFO producer parked in
// enqueue waiting for a slot to open.
func (s *Station) dequeue(mode FlowModeWait, deadline time.Time, quit func() bool) (int, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if len(s.input) > 0 {
			idx := s.input[0]
			s.input = s.input[1:]
			s.cond.Broadcast()
			return idx, false, true
		}
		if quit != nil && quit() {
			return 0, true, false
		}
		switch mode {
		case WaitAsync:
			return 0, false, false
		case WaitTimed:
			if time.Now().After(deadline) {
				return 0, false, false
			}
			s.condWaitSlice(deadline)
		default:
			s.cond.Wait()
		}
	}
}

// condWaitSlice blocks for at most a short slice of deadline, so the caller
// loop re-checks both the input list and its own deadline periodically.
// sync.Cond has no timed wait; this mirrors etpool's waitUntilLocked.
func (s *Station) condWaitSlice(deadline time.Time) {
	d := time.Until(deadline)
	if d <= 0 {
		return
	}
	const slice = 50 * time.Millisecond
	if d > slice {
		d = slice
	}
	s.mu.Unlock()
	time.Sleep(d)
	s.mu.Lock()
}

// FlowModeWait mirrors etpool.AllocMode for station-level blocking reads,
// kept distinct since a station wait has no allocation semantics of its own.
type FlowModeWait uint8

const (
	WaitSleep FlowModeWait = iota
	WaitTimed
	WaitAsync
)
