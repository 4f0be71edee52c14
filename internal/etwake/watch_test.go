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

package etwake_test

import (
	"context"
	"time"

	etwake "github.com/nabbar/etbroker/internal/etwake"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("liveness tracker", func() {
	It("reports Since growing until Touch resets it", func() {
		tr := etwake.NewTracker()
		time.Sleep(20 * time.Millisecond)
		Expect(tr.Since()).To(BeNumerically(">=", 20*time.Millisecond))
		tr.Touch()
		Expect(tr.Since()).To(BeNumerically("<", 20*time.Millisecond))
	})
})

var _ = Describe("Watch", func() {
	It("fires onDead once the tracker has gone silent past the timeout", func() {
		tr := etwake.NewTracker()
		fired := make(chan struct{}, 1)

		stop := etwake.Watch(context.Background(), tr, etwake.Config{
			Timeout: 20 * time.Millisecond,
			Poll:    5 * time.Millisecond,
		}, func() { fired <- struct{}{} })
		defer stop()

		Eventually(fired, time.Second).Should(Receive())
	})

	It("never fires while Touch keeps arriving faster than the timeout", func() {
		tr := etwake.NewTracker()
		fired := make(chan struct{}, 1)

		stop := etwake.Watch(context.Background(), tr, etwake.Config{
			Timeout: 200 * time.Millisecond,
			Poll:    10 * time.Millisecond,
		}, func() { fired <- struct{}{} })
		defer stop()

		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		deadline := time.After(150 * time.Millisecond)
	loop:
		for {
			select {
			case <-ticker.C:
				tr.Touch()
			case <-deadline:
				break loop
			}
		}

		Consistently(fired, 50*time.Millisecond).ShouldNot(Receive())
	})

	It("stops cleanly when ctx is cancelled before the timeout", func() {
		tr := etwake.NewTracker()
		fired := make(chan struct{}, 1)
		ctx, cancel := context.WithCancel(context.Background())

		stop := etwake.Watch(ctx, tr, etwake.Config{
			Timeout: time.Second,
			Poll:    5 * time.Millisecond,
		}, func() { fired <- struct{}{} })
		defer stop()

		cancel()
		Consistently(fired, 50*time.Millisecond).ShouldNot(Receive())
	})
})
