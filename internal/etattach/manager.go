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

package etattach

import (
	"sync"

	"github.com/hashicorp/go-uuid"

	etc "github.com/nabbar/etbroker/internal/etcode"
	etstation "github.com/nabbar/etbroker/internal/etstation"
)

// Manager is the session-local array of attachments a single server loop
// created (spec 4.8): on session end, for any reason, every attachment it
// holds is detached, invoking the station restore path.
type Manager struct {
	sys *etstation.System

	mu    sync.Mutex
	byID  map[string]*Attachment
}

// NewManager builds an attachment manager bound to a station system.
func NewManager(sys *etstation.System) *Manager {
	return &Manager{sys: sys, byID: make(map[string]*Attachment)}
}

// Attach creates and records a new attachment to stationName, owned by pid
// at host, over the given session remote address.
func (m *Manager) Attach(stationName string, pid int, host, remote string) (*Attachment, etc.Error) {
	st, err := m.sys.Attach(stationName)
	if err != nil {
		return nil, err
	}

	id, uerr := uuid.GenerateUUID()
	if uerr != nil {
		_ = m.sys.Detach(st, nil)
		return nil, etc.Unknown.Errorf("generating attachment id: %v", uerr)
	}

	att := New(id, st, pid, host, remote)

	m.mu.Lock()
	m.byID[id] = att
	m.mu.Unlock()

	return att, nil
}

// Lookup returns the attachment by id, if this manager created it.
func (m *Manager) Lookup(id string) (*Attachment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	return a, ok
}

// Detach unbinds and forgets one attachment, restoring its owned events.
func (m *Manager) Detach(id string) etc.Error {
	m.mu.Lock()
	att, ok := m.byID[id]
	if ok {
		delete(m.byID, id)
	}
	m.mu.Unlock()

	if !ok {
		return etc.BadArg.Errorf("unknown attachment %q", id)
	}
	return att.Detach(m.sys)
}

// DetachAll unbinds every attachment this manager created, in no particular
// order, continuing past individual errors and returning the first one
// encountered (spec 4.8: session end always detaches everything it holds).
func (m *Manager) DetachAll() etc.Error {
	m.mu.Lock()
	ids := make([]string, 0, len(m.byID))
	for id := range m.byID {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var first etc.Error
	for _, id := range ids {
		if err := m.Detach(id); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// WakeAttachment raises the quit flag on one attachment this manager knows.
func (m *Manager) WakeAttachment(id string) etc.Error {
	m.mu.Lock()
	att, ok := m.byID[id]
	m.mu.Unlock()
	if !ok {
		return etc.BadArg.Errorf("unknown attachment %q", id)
	}
	att.Quit()
	return nil
}

// WakeStation raises the quit flag on every attachment bound to a station
// with the given name, across all attachments this manager tracks.
func (m *Manager) WakeStation(stationName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, att := range m.byID {
		if att.Station().Name() == stationName {
			att.Quit()
		}
	}
}

// MarkDead flags one attachment as belonging to a gone session, so any call
// blocked or later entering Get unwinds with DEAD instead of hanging.
func (m *Manager) MarkDead(id string) etc.Error {
	m.mu.Lock()
	att, ok := m.byID[id]
	m.mu.Unlock()
	if !ok {
		return etc.BadArg.Errorf("unknown attachment %q", id)
	}
	att.MarkDead()
	return nil
}

// MarkAllDead flags every attachment this manager tracks as dead. Used by
// etwake when a session's TCP liveness poll judges the connection gone
// without a clean CLOSE ever arriving.
func (m *Manager) MarkAllDead() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, att := range m.byID {
		att.MarkDead()
	}
}

// Count returns how many attachments are currently tracked.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}
