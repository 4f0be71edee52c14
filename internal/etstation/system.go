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
	"sync"

	etc "github.com/nabbar/etbroker/internal/etcode"
	etpool "github.com/nabbar/etbroker/internal/etpool"
)

// GrandCentralName is the reserved name of the position-0 source/sink
// station that always exists and cannot be removed.
const GrandCentralName = "GRAND_CENTRAL"

// System owns the pool, the ordered station chain, and grand-central's
// used-list. Grand-central's new-list is not modeled separately: it is the
// pool's own free bitset, reclaimed directly by Alloc.
type System struct {
	pool *etpool.Pool
	reg  *Registry

	mu      sync.Mutex
	byName  map[string]*Station
	ordered []*Station // position order, index 0 is always grand central
	central *Station
}

// NewSystem builds a station system rooted at grand central, backed by pool.
func NewSystem(pool *etpool.Pool, reg *Registry) *System {
	if reg == nil {
		reg = NewRegistry()
	}
	gc := newStation(Config{
		Name:        GrandCentralName,
		FlowMode:    FlowSerial,
		UserMode:    UserMulti,
		RestoreMode: RestoreCentral,
		SelectMode:  SelectAll,
	}, 0, 0)
	gc.state = StateActive

	return &System{
		pool:    pool,
		reg:     reg,
		byName:  map[string]*Station{GrandCentralName: gc},
		ordered: []*Station{gc},
		central: gc,
	}
}

// Registry exposes the predicate registry so callers can register custom
// predicates before creating stations that reference them by name.
func (s *System) Registry() *Registry {
	return s.reg
}

// Pool exposes the underlying event pool for the session loop's event-new/
// get/put/dump opcodes, which operate on raw indices rather than through a
// station.
func (s *System) Pool() *etpool.Pool {
	return s.pool
}

// GrandCentral returns the always-present position-0 station.
func (s *System) GrandCentral() *Station {
	return s.central
}

// Lookup returns the named station, if it exists.
func (s *System) Lookup(name string) (*Station, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.byName[name]
	return st, ok
}

// List returns the station chain in position order.
func (s *System) List() []*Station {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Station, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// CreateAt inserts a new station at position, or folds it into an existing
// parallel group named by cfg.GroupWith. Position 0 is reserved for grand
// central.
func (s *System) CreateAt(cfg Config, position int) (*Station, etc.Error) {
	if cfg.Name == "" {
		return nil, etc.BadArg.Errorf("station name must not be empty")
	}
	if cfg.Name == GrandCentralName {
		return nil, etc.Exists.Errorf("name %q is reserved", cfg.Name)
	}
	if cfg.SelectMode == SelectCustom && cfg.Predicate == nil {
		if fn, ok := s.reg.Lookup(libFuncKey(cfg.Lib, cfg.Func)); ok {
			cfg.Predicate = fn
		} else {
			return nil, etc.BadArg.Errorf("no predicate registered for %s/%s", cfg.Lib, cfg.Func)
		}
	}
	if position <= 0 {
		return nil, etc.BadArg.Errorf("position must be greater than grand central's (0)")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[cfg.Name]; exists {
		return nil, etc.Exists.Errorf("station %q already exists", cfg.Name)
	}

	if cfg.GroupWith != "" {
		head, ok := s.byName[cfg.GroupWith]
		if !ok {
			return nil, etc.BadArg.Errorf("group head %q does not exist", cfg.GroupWith)
		}
		if head.groupHead != nil {
			head = head.groupHead
		}
		member := newStation(cfg, head.position, len(head.groupMembers)+1)
		member.flowMode = FlowParallelMember
		member.groupHead = head
		member.state = StateActive
		head.groupMembers = append(head.groupMembers, member)
		s.byName[cfg.Name] = member
		return member, nil
	}

	st := newStation(cfg, position, 0)
	if cfg.FlowMode == FlowParallelHead {
		st.groupHead = st
	}
	st.state = StateActive

	idx := len(s.ordered)
	for i, o := range s.ordered {
		if o.position >= position {
			idx = i
			break
		}
	}
	s.ordered = append(s.ordered, nil)
	copy(s.ordered[idx+1:], s.ordered[idx:])
	s.ordered[idx] = st
	s.byName[cfg.Name] = st

	return st, nil
}

// Remove drops a station, provided its input list and attach count are
// both zero. Grand central can never be removed.
func (s *System) Remove(name string) etc.Error {
	if name == GrandCentralName {
		return etc.BadArg.Errorf("grand central cannot be removed")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.byName[name]
	if !ok {
		return etc.BadArg.Errorf("station %q does not exist", name)
	}
	st.mu.Lock()
	busy := st.attachCount > 0 || len(st.input) > 0
	st.mu.Unlock()
	if busy {
		return etc.Busy.Errorf("station %q has attachments or queued events", name)
	}

	delete(s.byName, name)
	if st.groupHead != nil && st.groupHead != st {
		head := st.groupHead
		for i, m := range head.groupMembers {
			if m == st {
				head.groupMembers = append(head.groupMembers[:i], head.groupMembers[i+1:]...)
				break
			}
		}
		return nil
	}

	for i, o := range s.ordered {
		if o == st {
			s.ordered = append(s.ordered[:i], s.ordered[i+1:]...)
			break
		}
	}
	return nil
}

