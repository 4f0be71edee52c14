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

package etpool_test

import (
	"time"

	etc "github.com/nabbar/etbroker/internal/etcode"
	etpool "github.com/nabbar/etbroker/internal/etpool"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Pool", func() {
	It("rejects mismatched group quotas", func() {
		_, err := etpool.New(10, 128, []etpool.GroupQuota{{Count: 5}}, 2)
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(etc.BadArg)).To(BeTrue())
	})

	It("allocates and frees events, preserving conservation", func() {
		p, err := etpool.New(100, 1024, nil, 2)
		Expect(err).To(BeNil())
		Expect(p.FreeCount()).To(Equal(100))

		idx, aerr := p.Alloc(0, 100, etpool.AllocAsync, time.Time{}, nil)
		Expect(aerr).To(BeNil())
		Expect(idx).To(HaveLen(100))
		Expect(p.FreeCount()).To(Equal(0))

		for _, i := range idx {
			Expect(p.Free(i)).To(BeNil())
		}
		Expect(p.FreeCount()).To(Equal(100))
	})

	It("returns EMPTY on ASYNC alloc when exhausted", func() {
		p, _ := etpool.New(1, 16, nil, 0)
		_, aerr := p.Alloc(0, 1, etpool.AllocAsync, time.Time{}, nil)
		Expect(aerr).To(BeNil())

		_, aerr = p.Alloc(0, 1, etpool.AllocAsync, time.Time{}, nil)
		Expect(aerr.IsCode(etc.Empty)).To(BeTrue())
	})

	It("honours the quit callback as WAKEUP", func() {
		p, _ := etpool.New(1, 16, nil, 0)
		_, _ = p.Alloc(0, 1, etpool.AllocAsync, time.Time{}, nil)

		_, aerr := p.Alloc(0, 1, etpool.AllocSleep, time.Time{}, func() bool { return true })
		Expect(aerr.IsCode(etc.Wakeup)).To(BeTrue())
	})

	It("times out a TIMED alloc past its deadline", func() {
		p, _ := etpool.New(1, 16, nil, 0)
		_, _ = p.Alloc(0, 1, etpool.AllocAsync, time.Time{}, nil)

		start := time.Now()
		_, aerr := p.Alloc(0, 1, etpool.AllocTimed, start.Add(80*time.Millisecond), nil)
		Expect(aerr.IsCode(etc.Timeout)).To(BeTrue())
		Expect(time.Since(start)).To(BeNumerically(">=", 70*time.Millisecond))
	})

	It("wakes a SLEEP alloc once an event is freed concurrently", func() {
		p, _ := etpool.New(1, 16, nil, 0)
		idx, _ := p.Alloc(0, 1, etpool.AllocAsync, time.Time{}, nil)

		done := make(chan []int, 1)
		go func() {
			got, _ := p.Alloc(0, 1, etpool.AllocSleep, time.Time{}, nil)
			done <- got
		}()

		time.Sleep(20 * time.Millisecond)
		Expect(p.Free(idx[0])).To(BeNil())

		Eventually(done, time.Second).Should(Receive())
	})

	It("carves oversized temp events outside the fixed pool", func() {
		p, _ := etpool.New(2, 16, nil, 0)
		idx, err := p.AllocOversized(4096)
		Expect(err).To(BeNil())
		Expect(idx).To(BeNumerically("<", 0))

		d, derr := p.Data(idx)
		Expect(derr).To(BeNil())
		Expect(d).To(HaveLen(4096))

		h, herr := p.Header(idx)
		Expect(herr).To(BeNil())
		Expect(h.Temp).To(Equal(etpool.TempOversized))

		Expect(p.Free(idx)).To(BeNil())
		_, derr = p.Data(idx)
		Expect(derr).ToNot(BeNil())
	})

	It("respects per-group partitioning", func() {
		p, err := etpool.New(10, 8, []etpool.GroupQuota{{Count: 4}, {Count: 6}}, 0)
		Expect(err).To(BeNil())

		g0, _ := p.Alloc(0, 10, etpool.AllocAsync, time.Time{}, nil)
		Expect(g0).To(HaveLen(4))

		g1, _ := p.Alloc(1, 10, etpool.AllocAsync, time.Time{}, nil)
		Expect(g1).To(HaveLen(6))
	})
})
