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

// Package etrunner gives the broker process a single Start/Stop/Restart
// lifecycle in front of its TCP server and UDP discovery responder, so
// cmd/etbrokerd has one object to drive from a signal handler.
package etrunner

import (
	"context"
	"time"
)

// StartFunc and StopFunc are the two halves a Runner coordinates.
type StartFunc func(ctx context.Context) error
type StopFunc func(ctx context.Context) error

// Runner is a restartable process component with an observable uptime.
type Runner interface {
	// Start runs the start function if not already running. Safe to call
	// concurrently; a Start already in flight is not duplicated.
	Start(ctx context.Context) error

	// Stop runs the stop function if running. Safe to call concurrently
	// and safe to call when not running (no-op, nil error).
	Stop(ctx context.Context) error

	// Restart stops then starts again, propagating whichever error (if
	// any) occurs first.
	Restart(ctx context.Context) error

	// IsRunning reports whether Start has completed without a matching
	// Stop since.
	IsRunning() bool

	// Uptime returns how long the runner has been running, or zero when
	// not running.
	Uptime() time.Duration
}
