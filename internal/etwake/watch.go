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

package etwake

import (
	"context"
	"time"
)

// Watch spawns a goroutine that polls t every cfg.Poll. If t has gone
// silent for longer than cfg.Timeout, onDead fires exactly once and the
// goroutine exits; it also exits, without firing onDead, when ctx is
// cancelled. The returned stop func cancels the poll early, e.g. when the
// session ends cleanly and there's no point watching it any further.
func Watch(ctx context.Context, t *Tracker, cfg Config, onDead func()) (stop func()) {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(ctx)

	ticker := time.NewTicker(cfg.Poll)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if t.Since() > cfg.Timeout {
					onDead()
					return
				}
			}
		}
	}()

	return cancel
}
