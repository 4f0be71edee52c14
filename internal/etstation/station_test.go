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
	"time"

	etc "github.com/nabbar/etbroker/internal/etcode"
	etpool "github.com/nabbar/etbroker/internal/etpool"
	etstation "github.com/nabbar/etbroker/internal/etstation"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("System", func() {
	var pool *etpool.Pool

	BeforeEach(func() {
		pool, _ = etpool.New(10, 64, nil, 2)
	})

	It("always starts with grand central at position 0", func() {
		sys := etstation.NewSystem(pool, nil)
		Expect(sys.GrandCentral().Name()).To(Equal(etstation.GrandCentralName))
		Expect(sys.GrandCentral().Position()).To(Equal(0))
	})

	It("creates stations in position order", func() {
		sys := etstation.NewSystem(pool, nil)
		_, err := sys.CreateAt(etstation.Config{Name: "second", SelectMode: etstation.SelectAll}, 2)
		Expect(err).To(BeNil())
		_, err = sys.CreateAt(etstation.Config{Name: "first", SelectMode: etstation.SelectAll}, 1)
		Expect(err).To(BeNil())

		names := make([]string, 0)
		for _, st := range sys.List() {
			names = append(names, st.Name())
		}
		Expect(names).To(Equal([]string{etstation.GrandCentralName, "first", "second"}))
	})

	It("rejects a duplicate station name", func() {
		sys := etstation.NewSystem(pool, nil)
		_, _ = sys.CreateAt(etstation.Config{Name: "a", SelectMode: etstation.SelectAll}, 1)
		_, err := sys.CreateAt(etstation.Config{Name: "a", SelectMode: etstation.SelectAll}, 2)
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(etc.Exists)).To(BeTrue())
	})

	It("enforces single-user attachment limits", func() {
		sys := etstation.NewSystem(pool, nil)
		_, _ = sys.CreateAt(etstation.Config{Name: "solo", UserMode: etstation.UserSingle, SelectMode: etstation.SelectAll}, 1)

		_, err := sys.Attach("solo")
		Expect(err).To(BeNil())

		_, err = sys.Attach("solo")
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(etc.Busy)).To(BeTrue())
	})

	It("dispatches a SelectAll station to the next station downstream", func() {
		sys := etstation.NewSystem(pool, nil)
		st, _ := sys.CreateAt(etstation.Config{Name: "sink", SelectMode: etstation.SelectAll}, 1)

		idx, _ := pool.Alloc(0, 1, etpool.AllocAsync, time.Time{}, nil)
		sys.Put(sys.GrandCentral(), idx[0], nil)

		got, err := sys.Get(st, etstation.WaitAsync, time.Time{}, nil)
		Expect(err).To(BeNil())
		Expect(got).To(Equal(idx[0]))
	})

	It("falls back to grand central when nothing downstream matches", func() {
		sys := etstation.NewSystem(pool, nil)
		_, _ = sys.CreateAt(etstation.Config{
			Name:       "picky",
			SelectMode: etstation.SelectMatch,
			Select:     []int64{99},
		}, 1)

		idx, _ := pool.Alloc(0, 1, etpool.AllocAsync, time.Time{}, nil)
		sys.Put(sys.GrandCentral(), idx[0], nil)

		got, err := sys.Get(sys.GrandCentral(), etstation.WaitAsync, time.Time{}, nil)
		Expect(err).To(BeNil())
		Expect(got).To(Equal(idx[0]))
	})

	It("matches on select control words", func() {
		sys := etstation.NewSystem(pool, nil)
		st, _ := sys.CreateAt(etstation.Config{
			Name:       "tagged",
			SelectMode: etstation.SelectMatch,
			Select:     []int64{7},
		}, 1)

		idx, _ := pool.Alloc(0, 1, etpool.AllocAsync, time.Time{}, nil)
		h, _ := pool.Header(idx[0])
		h.Control[0] = 7
		_ = pool.SetHeader(idx[0], h)

		sys.Put(sys.GrandCentral(), idx[0], nil)

		got, err := sys.Get(st, etstation.WaitAsync, time.Time{}, nil)
		Expect(err).To(BeNil())
		Expect(got).To(Equal(idx[0]))
	})

	It("applies prescale, only accepting every Nth matching event", func() {
		sys := etstation.NewSystem(pool, nil)
		st, _ := sys.CreateAt(etstation.Config{Name: "half", SelectMode: etstation.SelectAll, Prescale: 2}, 1)

		idx, _ := pool.Alloc(0, 2, etpool.AllocAsync, time.Time{}, nil)
		sys.Put(sys.GrandCentral(), idx[0], nil)
		sys.Put(sys.GrandCentral(), idx[1], nil)

		_, err := sys.Get(st, etstation.WaitAsync, time.Time{}, nil)
		Expect(err).To(BeNil())

		// the first Put (uneven matchSeen) should have been prescaled away
		// to grand central instead of st.
		_, gcErr := sys.Get(sys.GrandCentral(), etstation.WaitAsync, time.Time{}, nil)
		Expect(gcErr).To(BeNil())
	})

	It("round-robins across a parallel group", func() {
		sys := etstation.NewSystem(pool, nil)
		head, _ := sys.CreateAt(etstation.Config{Name: "head", FlowMode: etstation.FlowParallelHead, SelectMode: etstation.SelectAll}, 1)
		member, _ := sys.CreateAt(etstation.Config{Name: "member", SelectMode: etstation.SelectAll, GroupWith: "head"}, 1)

		idx, _ := pool.Alloc(0, 2, etpool.AllocAsync, time.Time{}, nil)
		sys.Put(sys.GrandCentral(), idx[0], nil)
		sys.Put(sys.GrandCentral(), idx[1], nil)

		c1 := head.InputCount() + member.InputCount()
		Expect(c1).To(Equal(2))
		Expect(head.InputCount()).To(Equal(1))
		Expect(member.InputCount()).To(Equal(1))
	})

	It("restores discarded events to the pool on detach", func() {
		sys := etstation.NewSystem(pool, nil)
		st, _ := sys.CreateAt(etstation.Config{Name: "owner", RestoreMode: etstation.RestoreDiscard, SelectMode: etstation.SelectAll}, 1)
		_, _ = sys.Attach("owner")

		idx, _ := pool.Alloc(0, 1, etpool.AllocAsync, time.Time{}, nil)
		before := pool.FreeCount()

		Expect(sys.Detach(st, idx)).To(BeNil())
		Expect(pool.FreeCount()).To(Equal(before + 1))
	})

	It("refuses to remove a busy station", func() {
		sys := etstation.NewSystem(pool, nil)
		st, _ := sys.CreateAt(etstation.Config{Name: "held", SelectMode: etstation.SelectAll}, 1)
		idx, _ := pool.Alloc(0, 1, etpool.AllocAsync, time.Time{}, nil)
		sys.Put(sys.GrandCentral(), idx[0], nil)
		_ = st

		err := sys.Remove("held")
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(etc.Busy)).To(BeTrue())
	})

	It("resolves a custom predicate through the registry by lib/func name", func() {
		reg := etstation.NewRegistry()
		reg.Register("userlib/isEven", func(h etpool.Header, data []byte) bool {
			return h.Control[0]%2 == 0
		})
		sys := etstation.NewSystem(pool, reg)
		st, err := sys.CreateAt(etstation.Config{
			Name:       "even",
			SelectMode: etstation.SelectCustom,
			Lib:        "userlib",
			Func:       "isEven",
		}, 1)
		Expect(err).To(BeNil())

		idx, _ := pool.Alloc(0, 1, etpool.AllocAsync, time.Time{}, nil)
		h, _ := pool.Header(idx[0])
		h.Control[0] = 4
		_ = pool.SetHeader(idx[0], h)

		sys.Put(sys.GrandCentral(), idx[0], nil)
		got, gerr := sys.Get(st, etstation.WaitAsync, time.Time{}, nil)
		Expect(gerr).To(BeNil())
		Expect(got).To(Equal(idx[0]))
	})
})
