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

// Package etserver implements the per-session command loop (spec section
// C8): one goroutine per TCP session, dispatching the opcode catalogue
// against the shared station system and a session-local attachment
// manager. Event get and put pass the attachment's quit flag down to the
// station layer; event new allocates from the pool without a quit check,
// so a wakeup does not interrupt a SLEEP or TIMED event-new wait.
package etserver

import (
	"time"

	etlog "github.com/nabbar/etbroker/internal/etlog"
	etmetrics "github.com/nabbar/etbroker/internal/etmetrics"
	etstation "github.com/nabbar/etbroker/internal/etstation"
)

// Config describes the shared, process-wide broker state every session
// loop dispatches against.
type Config struct {
	System   *etstation.System
	Filename string
	Language uint32

	// HandshakeDeadline bounds the initial 12-byte magic read (spec 4.4's
	// "tight deadline"); the teacher's portscan-gate primitive reads 3
	// ints non-blocking within a short window, which this generalizes to
	// io.ReadFull under a deadline rather than a raw poll loop.
	HandshakeDeadline time.Duration

	// MaxPayload bounds a single frame's declared length, guarding against
	// a corrupt or hostile length field.
	MaxPayload uint32

	Logger etlog.Logger

	// Metrics is optional; when set, event transfers are counted against
	// it. A nil Metrics disables counting rather than panicking.
	Metrics *etmetrics.Broker
}

// DefaultHandshakeDeadline matches spec's "10 x 10ms" budget.
const DefaultHandshakeDeadline = 100 * time.Millisecond

// DefaultMaxPayload bounds a single frame to 64 MiB of declared payload.
const DefaultMaxPayload = 64 << 20

func (c Config) withDefaults() Config {
	if c.HandshakeDeadline <= 0 {
		c.HandshakeDeadline = DefaultHandshakeDeadline
	}
	if c.MaxPayload == 0 {
		c.MaxPayload = DefaultMaxPayload
	}
	return c
}
