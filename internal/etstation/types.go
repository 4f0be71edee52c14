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

// Package etstation implements the station pipeline (spec section C6): the
// ordered list of routing nodes events flow through between grand-central
// and back, including parallel-group fan-out, prescale/select predicates,
// and the blocking/non-blocking cue policies.
package etstation

import (
	"sync"

	etpool "github.com/nabbar/etbroker/internal/etpool"
)

// FlowMode places a station in the chain.
type FlowMode uint8

const (
	FlowSerial FlowMode = iota
	FlowParallelHead
	FlowParallelMember
)

// UserMode limits how many attachments a station accepts.
type UserMode uint8

const (
	UserMulti UserMode = iota
	UserSingle
)

// RestoreMode selects where a detaching attachment's owned events go.
type RestoreMode uint8

const (
	RestoreInput RestoreMode = iota
	RestoreOutput
	RestoreCentral
	RestoreDiscard
)

// BlockMode controls admission to a station's input list.
type BlockMode uint8

const (
	BlockFIFO BlockMode = iota
	BlockCueSkip
	BlockCueDisplace
)

// SelectMode chooses how a station's predicate evaluates an event.
type SelectMode uint8

const (
	SelectAll SelectMode = iota
	SelectMatch
	SelectCustom
)

// State is a station's lifecycle state.
type State uint8

const (
	StateIdle State = iota
	StateCreating
	StateActive
	StateRemoving
)

// Predicate evaluates an event header (and, for custom predicates, its
// payload) to decide whether a station accepts it. It must not mutate
// either. Go has no native equivalent of loading a predicate by
// (lib, func) name at runtime, so custom predicates are registered in a
// process-local Registry and referenced by name (see registry.go).
type Predicate func(h etpool.Header, data []byte) bool

// Config describes a station at creation time.
type Config struct {
	Name        string
	FlowMode    FlowMode
	UserMode    UserMode
	RestoreMode RestoreMode
	BlockMode   BlockMode
	Prescale    int
	Cue         int
	SelectMode  SelectMode
	Select      []int64
	Predicate   Predicate
	Lib, Func   string
	Class       string
	GroupWith   string // name of an existing parallel-group head/member to join
}

// Station is a routing node: a predicate, an input list, and (conceptually)
// an output staging list — which this implementation folds into an inline
// re-dispatch at Put time (spec section C6 explicitly allows this as an
// "equivalent behavior" to a separate output-list service thread).
type Station struct {
	mu   sync.Mutex
	cond *sync.Cond

	name             string
	position         int
	parallelPosition int
	flowMode         FlowMode
	userMode         UserMode
	restoreMode      RestoreMode
	blockMode        BlockMode
	prescale         int
	cue              int
	selectMode       SelectMode
	selectWords      []int64
	predicate        Predicate

	state       State
	input       []int
	attachCount int
	matchSeen   int // counts events that passed the predicate, for prescale

	groupHead    *Station
	groupMembers []*Station
	rrNext       int
}

func newStation(cfg Config, position, pposition int) *Station {
	s := &Station{
		name:             cfg.Name,
		position:         position,
		parallelPosition: pposition,
		flowMode:         cfg.FlowMode,
		userMode:         cfg.UserMode,
		restoreMode:      cfg.RestoreMode,
		blockMode:         cfg.BlockMode,
		prescale:         cfg.Prescale,
		cue:              cfg.Cue,
		selectMode:       cfg.SelectMode,
		selectWords:      append([]int64(nil), cfg.Select...),
		predicate:        cfg.Predicate,
		state:            StateIdle,
	}
	if s.prescale < 1 {
		s.prescale = 1
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Name returns the station's unique name.
func (s *Station) Name() string { return s.name }

// Position returns the station's ordinal in the main chain.
func (s *Station) Position() int { return s.position }

// ParallelPosition returns the station's ordinal among parallel siblings.
func (s *Station) ParallelPosition() int { return s.parallelPosition }

// State returns the current lifecycle state.
func (s *Station) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// InputCount returns the number of events currently queued on the input list.
func (s *Station) InputCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.input)
}

// AttachCount returns the number of attachments currently bound.
func (s *Station) AttachCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attachCount
}

// RestoreMode exposes the configured restore policy.
func (s *Station) RestoreMode() RestoreMode {
	return s.restoreMode
}

// BlockMode exposes the configured block policy.
func (s *Station) BlockMode() BlockMode {
	return s.blockMode
}

// Prescale exposes the configured prescale factor.
func (s *Station) Prescale() int {
	return s.prescale
}

// Cue exposes the configured non-blocking cue capacity.
func (s *Station) Cue() int {
	return s.cue
}
