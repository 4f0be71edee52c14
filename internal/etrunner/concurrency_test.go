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

package etrunner_test

import (
	"context"
	"sync"
	"sync/atomic"

	etrunner "github.com/nabbar/etbroker/internal/etrunner"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("concurrent lifecycle calls", func() {
	It("runs the start function exactly once under concurrent Start", func() {
		var starts int32
		r := etrunner.New(
			func(ctx context.Context) error { atomic.AddInt32(&starts, 1); return nil },
			func(ctx context.Context) error { return nil },
		)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = r.Start(context.Background())
			}()
		}
		wg.Wait()

		Expect(r.IsRunning()).To(BeTrue())
		Expect(atomic.LoadInt32(&starts)).To(Equal(int32(1)))
	})

	It("runs the stop function exactly once under concurrent Stop", func() {
		var stops int32
		r := etrunner.New(
			func(ctx context.Context) error { return nil },
			func(ctx context.Context) error { atomic.AddInt32(&stops, 1); return nil },
		)
		Expect(r.Start(context.Background())).To(Succeed())

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = r.Stop(context.Background())
			}()
		}
		wg.Wait()

		Expect(r.IsRunning()).To(BeFalse())
		Expect(atomic.LoadInt32(&stops)).To(Equal(int32(1)))
	})
})
