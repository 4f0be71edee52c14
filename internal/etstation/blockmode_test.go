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

package etstation_test

import (
	"sync/atomic"
	"time"

	etc "github.com/nabbar/etbroker/internal/etcode"
	etpool "github.com/nabbar/etbroker/internal/etpool"
	etstation "github.com/nabbar/etbroker/internal/etstation"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("block mode admission", func() {
	var pool *etpool.Pool

	BeforeEach(func() {
		pool, _ = etpool.New(10, 64, nil, 2)
	})

	It("drops the newest arrival under BlockCueSkip once the cue is full", func() {
		sys := etstation.NewSystem(pool, nil)
		st, _ := sys.CreateAt(etstation.Config{
			Name: "skip", SelectMode: etstation.SelectAll,
			BlockMode: etstation.BlockCueSkip, Cue: 1,
		}, 1)

		idx, _ := pool.Alloc(0, 2, etpool.AllocAsync, time.Time{}, nil)
		before := pool.FreeCount()

		Expect(sys.Put(sys.GrandCentral(), idx[0], nil)).To(BeNil())
		Expect(sys.Put(sys.GrandCentral(), idx[1], nil)).To(BeNil())

		Expect(st.InputCount()).To(Equal(1))
		Expect(pool.FreeCount()).To(Equal(before + 1))
	})

	It("evicts the oldest queued entry under BlockCueDisplace once the cue is full", func() {
		sys := etstation.NewSystem(pool, nil)
		st, _ := sys.CreateAt(etstation.Config{
			Name: "displace", SelectMode: etstation.SelectAll,
			BlockMode: etstation.BlockCueDisplace, Cue: 1,
		}, 1)

		idx, _ := pool.Alloc(0, 2, etpool.AllocAsync, time.Time{}, nil)
		Expect(sys.Put(sys.GrandCentral(), idx[0], nil)).To(BeNil())
		Expect(sys.Put(sys.GrandCentral(), idx[1], nil)).To(BeNil())

		Expect(st.InputCount()).To(Equal(1))
		got, err := sys.Get(st, etstation.WaitAsync, time.Time{}, nil)
		Expect(err).To(BeNil())
		Expect(got).To(Equal(idx[1]))
	})

	It("blocks the producer under BlockFIFO until a dequeue opens a slot", func() {
		sys := etstation.NewSystem(pool, nil)
		st, _ := sys.CreateAt(etstation.Config{
			Name: "fifo", SelectMode: etstation.SelectAll,
			BlockMode: etstation.BlockFIFO, Cue: 1,
		}, 1)

		idx, _ := pool.Alloc(0, 2, etpool.AllocAsync, time.Time{}, nil)
		Expect(sys.Put(sys.GrandCentral(), idx[0], nil)).To(BeNil())

		var putReturned int32
		go func() {
			_ = sys.Put(sys.GrandCentral(), idx[1], nil)
			atomic.StoreInt32(&putReturned, 1)
		}()

		Consistently(func() int32 {
			return atomic.LoadInt32(&putReturned)
		}, "100ms", "10ms").Should(Equal(int32(0)))
		Expect(st.InputCount()).To(Equal(1))

		_, err := sys.Get(st, etstation.WaitAsync, time.Time{}, nil)
		Expect(err).To(BeNil())

		Eventually(func() int32 {
			return atomic.LoadInt32(&putReturned)
		}, "1s", "10ms").Should(Equal(int32(1)))
		Expect(st.InputCount()).To(Equal(1))
	})

	It("returns WAKEUP instead of blocking a full BlockFIFO station once quit is already raised", func() {
		sys := etstation.NewSystem(pool, nil)
		_, _ = sys.CreateAt(etstation.Config{
			Name: "fifo2", SelectMode: etstation.SelectAll,
			BlockMode: etstation.BlockFIFO, Cue: 1,
		}, 1)

		idx, _ := pool.Alloc(0, 2, etpool.AllocAsync, time.Time{}, nil)
		Expect(sys.Put(sys.GrandCentral(), idx[0], nil)).To(BeNil())

		quitFunc := func() bool { return true }

		err := sys.Put(sys.GrandCentral(), idx[1], quitFunc)
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(etc.Wakeup)).To(BeTrue())
	})
})
