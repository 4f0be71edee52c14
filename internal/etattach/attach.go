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

// Package etattach implements the attachment manager (spec section C7): the
// per-client record of owned events, cooperative quit/sleep flags, and the
// crash-recovery bookkeeping a session loop needs to detach cleanly.
package etattach

import (
	"sync"
	"sync/atomic"
	"time"

	etc "github.com/nabbar/etbroker/internal/etcode"
	etstation "github.com/nabbar/etbroker/internal/etstation"
)

// Counters track per-attachment event-transfer totals for metrics/diagnostics.
type Counters struct {
	Made    uint64
	Got     uint64
	Put     uint64
	Dumped  uint64
}

// Attachment is a session-scoped producer/consumer handle bound to exactly
// one station. It tracks everything needed to detect a remote crash and to
// restore owned events on detach.
type Attachment struct {
	id       string
	station  *etstation.Station
	pid      int
	host     string
	remote   string

	sleeping int32 // atomic bool: parked in a blocking Get/New call
	quit     int32 // atomic bool: raised by WakeAttachment/WakeStation
	dead     int32 // atomic bool: raised once the owning session is judged gone

	mu     sync.Mutex
	owned  map[int]struct{}
	counts Counters
}

// New builds an attachment bound to station st, owned by process pid at
// host, communicating over the given remote session address.
func New(id string, st *etstation.Station, pid int, host, remote string) *Attachment {
	return &Attachment{
		id:      id,
		station: st,
		pid:     pid,
		host:    host,
		remote:  remote,
		owned:   make(map[int]struct{}),
	}
}

// ID returns the attachment's unique identity.
func (a *Attachment) ID() string { return a.id }

// Station returns the station this attachment is bound to.
func (a *Attachment) Station() *etstation.Station { return a.station }

// PID and Host identify the owning process for crash detection.
func (a *Attachment) PID() int      { return a.pid }
func (a *Attachment) Host() string  { return a.host }
func (a *Attachment) Remote() string { return a.remote }

// Counters returns a snapshot of the transfer counters.
func (a *Attachment) Counters() Counters {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counts
}

// IsSleeping reports whether the attachment is currently parked in a
// blocking call.
func (a *Attachment) IsSleeping() bool {
	return atomic.LoadInt32(&a.sleeping) != 0
}

// Quit raises the cooperative quit flag; any blocking call in progress or
// entered afterwards returns WAKEUP the next time it checks.
func (a *Attachment) Quit() {
	atomic.StoreInt32(&a.quit, 1)
}

// MarkDead flags the attachment as belonging to a session that etwake has
// judged gone. It does not itself unwind a blocked call; the next wait-loop
// check (or Get's entry check) is what turns this into a DEAD return.
func (a *Attachment) MarkDead() {
	atomic.StoreInt32(&a.dead, 1)
	a.Quit()
}

// IsDead reports whether MarkDead has been called on this attachment.
func (a *Attachment) IsDead() bool {
	return atomic.LoadInt32(&a.dead) != 0
}

// quitRequested is passed as the quit callback to station Get/pool Alloc.
func (a *Attachment) quitRequested() bool {
	return atomic.LoadInt32(&a.quit) != 0
}

// resetQuit clears the quit flag once a blocking call has unwound with it,
// so the next call starts clean.
func (a *Attachment) resetQuit() {
	atomic.StoreInt32(&a.quit, 0)
}

func (a *Attachment) markSleeping(v bool) {
	if v {
		atomic.StoreInt32(&a.sleeping, 1)
	} else {
		atomic.StoreInt32(&a.sleeping, 0)
	}
}

func (a *Attachment) own(idx int) {
	a.mu.Lock()
	a.owned[idx] = struct{}{}
	a.mu.Unlock()
}

func (a *Attachment) disown(idx int) {
	a.mu.Lock()
	delete(a.owned, idx)
	a.mu.Unlock()
}

// Owned returns a snapshot of currently checked-out event indices.
func (a *Attachment) Owned() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]int, 0, len(a.owned))
	for idx := range a.owned {
		out = append(out, idx)
	}
	return out
}

// Get pulls the next event from the attachment's station, honouring
// cooperative quit at entry, during the wait, and on exit, per spec 4.7.
func (a *Attachment) Get(sys *etstation.System, mode etstation.FlowModeWait, deadline time.Time) (int, etc.Error) {
	if a.IsDead() {
		return 0, etc.Dead.Error()
	}
	if a.quitRequested() {
		a.resetQuit()
		return 0, etc.Wakeup.Error()
	}

	a.markSleeping(true)
	idx, err := sys.Get(a.station, mode, deadline, a.quitRequested)
	a.markSleeping(false)

	if err != nil {
		if a.IsDead() {
			return 0, etc.Dead.Error()
		}
		if err.IsCode(etc.Wakeup) {
			a.resetQuit()
		}
		return 0, err
	}

	a.own(idx)
	a.mu.Lock()
	a.counts.Got++
	a.mu.Unlock()
	return idx, nil
}

// Put hands idx back into the flow from the attachment's station and
// releases ownership. If the receiving station is BlockFIFO and full, Put
// blocks until space opens, honoring cooperative quit the same as Get. On a
// WAKEUP the event was never admitted, so the attachment keeps ownership of
// idx instead of losing track of it; the caller may retry the Put later.
func (a *Attachment) Put(sys *etstation.System, idx int) etc.Error {
	err := sys.Put(a.station, idx, a.quitRequested)
	if err != nil {
		if err.IsCode(etc.Wakeup) {
			a.resetQuit()
		}
		return err
	}

	a.disown(idx)
	a.mu.Lock()
	a.counts.Put++
	a.mu.Unlock()
	return nil
}

// Dump discards idx straight to grand central, bypassing dispatch.
func (a *Attachment) Dump(sys *etstation.System, idx int) etc.Error {
	if err := sys.Dump(idx); err != nil {
		return err
	}
	a.disown(idx)
	a.mu.Lock()
	a.counts.Dumped++
	a.mu.Unlock()
	return nil
}

// NoteCreated records that the attachment produced a fresh event (spec's
// "events-made" counter), independent of Get/Put/Dump bookkeeping.
func (a *Attachment) NoteCreated(idx int) {
	a.own(idx)
	a.mu.Lock()
	a.counts.Made++
	a.mu.Unlock()
}

// Detach unbinds the attachment from its station, restoring every event it
// still owns per the station's restore-mode, and clears the quit flag.
func (a *Attachment) Detach(sys *etstation.System) etc.Error {
	owned := a.Owned()
	if err := sys.Detach(a.station, owned); err != nil {
		return err
	}
	a.mu.Lock()
	a.owned = make(map[int]struct{})
	a.mu.Unlock()
	a.resetQuit()
	return nil
}
