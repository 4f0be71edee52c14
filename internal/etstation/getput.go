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

import (
	"time"

	etc "github.com/nabbar/etbroker/internal/etcode"
)

// Attach binds an attachment to station name, failing with BUSY if the
// station is UserSingle and already bound.
func (s *System) Attach(name string) (*Station, etc.Error) {
	st, ok := s.Lookup(name)
	if !ok {
		return nil, etc.BadArg.Errorf("station %q does not exist", name)
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.userMode == UserSingle && st.attachCount > 0 {
		return nil, etc.Busy.Errorf("station %q only accepts one attachment", name)
	}
	st.attachCount++
	return st, nil
}

// Detach unbinds one attachment from st. owned lists the event indices the
// departing attachment still held; each is routed per st's RestoreMode.
func (s *System) Detach(st *Station, owned []int) etc.Error {
	st.mu.Lock()
	if st.attachCount > 0 {
		st.attachCount--
	}
	mode := st.restoreMode
	pos := st.position
	st.mu.Unlock()

	for _, idx := range owned {
		switch mode {
		case RestoreInput:
			s.admitTo(st, idx, nil)
		case RestoreOutput:
			s.dispatch(pos, idx, nil)
		case RestoreCentral:
			s.admitTo(s.central, idx, nil)
		case RestoreDiscard:
			if err := s.pool.Free(idx); err != nil {
				return err
			}
		}
	}
	return nil
}

// Get removes the next event queued at st, blocking per mode/deadline/quit.
func (s *System) Get(st *Station, mode FlowModeWait, deadline time.Time, quit func() bool) (int, etc.Error) {
	idx, woken, ok := st.dequeue(mode, deadline, quit)
	if ok {
		return idx, nil
	}
	if woken {
		return 0, etc.Wakeup.Error()
	}
	switch mode {
	case WaitAsync:
		return 0, etc.Empty.Error()
	case WaitTimed:
		return 0, etc.Timeout.Error()
	default:
		return 0, etc.Unknown.Errorf("dequeue returned without an event")
	}
}

// Put hands idx back into the flow from st's position, dispatching it to
// the first downstream station (or parallel-group sibling) whose predicate
// accepts it, falling back to grand central's used-list. If the admitting
// station is BlockFIFO and full, Put blocks until space opens or quit fires.
func (s *System) Put(st *Station, idx int, quit func() bool) etc.Error {
	if s.dispatch(st.position, idx, quit) {
		return etc.Wakeup.Error()
	}
	return nil
}

// Dump returns idx to grand central directly, bypassing predicate dispatch
// (used by attachments that want to discard rather than forward an event).
func (s *System) Dump(idx int) etc.Error {
	return s.pool.Free(idx)
}
