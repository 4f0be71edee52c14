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

// Package etwake implements liveness and cooperative wakeup (spec section
// C9). Attachment and station wakeup themselves are a thin pass-through to
// internal/etattach's quit flag; what this package adds is the session
// liveness tracker that turns a silently-vanished TCP peer into a DEAD
// status for every attachment that session holds, since
// this module carries no external heartbeat monitor (spec.md's exclusion
// of "process-heartbeat/liveness monitor threads" as a collaborator).
package etwake

import "time"

// Config controls how aggressively a session's liveness is policed.
type Config struct {
	// Timeout is how long a session may go without a successful read
	// before it is judged gone.
	Timeout time.Duration

	// Poll is how often the tracker checks elapsed time against Timeout.
	Poll time.Duration
}

// DefaultTimeout and DefaultPoll match spec 4.8's TIMED(3s) polling cadence:
// a session gets several poll cycles of grace before being declared dead.
const (
	DefaultTimeout = 30 * time.Second
	DefaultPoll    = 3 * time.Second
)

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Poll <= 0 {
		c.Poll = DefaultPoll
	}
	return c
}
