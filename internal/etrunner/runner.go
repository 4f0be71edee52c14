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

package etrunner

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoStartFunc and ErrNoStopFunc are returned instead of panicking when
// New was given a nil function and the matching lifecycle call is made.
var (
	ErrNoStartFunc = errors.New("etrunner: no start function configured")
	ErrNoStopFunc  = errors.New("etrunner: no stop function configured")
)

type runner struct {
	start StartFunc
	stop  StopFunc

	mu      sync.Mutex
	running bool
	since   time.Time
}

// New builds a Runner around the given start/stop functions. Either may be
// nil; calling the corresponding lifecycle method then returns an error
// rather than panicking.
func New(start StartFunc, stop StopFunc) Runner {
	return &runner{start: start, stop: stop}
}

// Start and Stop hold the lock for the whole call, not just the state flip.
// That serializes concurrent lifecycle calls against each other, which is
// what keeps a racing pair of Start calls from both slipping past the
// running check and invoking the start function twice.

func (r *runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}
	if r.start == nil {
		return ErrNoStartFunc
	}
	if err := r.start(ctx); err != nil {
		return err
	}

	r.running = true
	r.since = time.Now()
	return nil
}

func (r *runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return nil
	}
	if r.stop == nil {
		return ErrNoStopFunc
	}
	if err := r.stop(ctx); err != nil {
		return err
	}

	r.running = false
	r.since = time.Time{}
	return nil
}

func (r *runner) Restart(ctx context.Context) error {
	if err := r.Stop(ctx); err != nil {
		return err
	}
	return r.Start(ctx)
}

func (r *runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *runner) Uptime() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return 0
	}
	return time.Since(r.since)
}
