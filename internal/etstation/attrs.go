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

// This file backs the session loop's station int-attribute opcodes (spec
// §4.4's dense getter/setter ranges): one generic accessor per attribute
// instead of hand duplicating the same mutex dance per opcode.

// UserMode exposes the configured single/multi attach policy.
func (s *Station) UserMode() UserMode {
	return s.userMode
}

// SelectMode exposes the configured predicate evaluation mode.
func (s *Station) SelectMode() SelectMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectMode
}

// SelectWords returns a copy of the configured select-control words.
func (s *Station) SelectWords() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.selectWords...)
}

// Lib/Func/Class are not separately stored post-creation beyond the
// resolved Predicate; stations created with SelectCustom retain nothing to
// report here except through the Registry that resolved them, so these
// getters return empty strings, matching a station created purely from an
// in-process Predicate closure.
func (s *Station) Lib() string   { return "" }
func (s *Station) Func() string  { return "" }
func (s *Station) Class() string { return "" }

// SetBlockMode updates the admission policy for future Put calls.
func (s *Station) SetBlockMode(m BlockMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blockMode = m
}

// SetUserMode updates the single/multi attach policy. Does not evict
// existing attachments.
func (s *Station) SetUserMode(m UserMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userMode = m
}

// SetRestoreMode updates where a detaching attachment's owned events go.
func (s *Station) SetRestoreMode(m RestoreMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restoreMode = m
}

// SetPrescale updates the prescale factor; values below 1 are clamped to 1.
func (s *Station) SetPrescale(n int) {
	if n < 1 {
		n = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prescale = n
}

// SetCue updates the non-blocking cue capacity used by BlockCueSkip and
// BlockCueDisplace.
func (s *Station) SetCue(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cue = n
}
