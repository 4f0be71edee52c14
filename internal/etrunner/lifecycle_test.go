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
	"errors"

	etrunner "github.com/nabbar/etbroker/internal/etrunner"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var errBoom = errors.New("boom")

var _ = Describe("lifecycle", func() {
	It("runs start then reports running with positive uptime", func() {
		started := 0
		r := etrunner.New(
			func(ctx context.Context) error { started++; return nil },
			func(ctx context.Context) error { return nil },
		)

		Expect(r.Start(context.Background())).To(Succeed())
		Expect(r.IsRunning()).To(BeTrue())
		Expect(started).To(Equal(1))

		Expect(r.Start(context.Background())).To(Succeed())
		Expect(started).To(Equal(1), "a Start while already running must not re-run the start function")
	})

	It("runs stop and clears running state", func() {
		stopped := 0
		r := etrunner.New(
			func(ctx context.Context) error { return nil },
			func(ctx context.Context) error { stopped++; return nil },
		)

		Expect(r.Start(context.Background())).To(Succeed())
		Expect(r.Stop(context.Background())).To(Succeed())
		Expect(r.IsRunning()).To(BeFalse())
		Expect(stopped).To(Equal(1))

		Expect(r.Stop(context.Background())).To(Succeed())
		Expect(stopped).To(Equal(1), "a Stop while already stopped must not re-run the stop function")
	})

	It("propagates a start error without flipping to running", func() {
		r := etrunner.New(
			func(ctx context.Context) error { return errBoom },
			func(ctx context.Context) error { return nil },
		)
		Expect(r.Start(context.Background())).To(MatchError(errBoom))
		Expect(r.IsRunning()).To(BeFalse())
	})

	It("propagates a stop error and leaves the runner marked running", func() {
		r := etrunner.New(
			func(ctx context.Context) error { return nil },
			func(ctx context.Context) error { return errBoom },
		)
		Expect(r.Start(context.Background())).To(Succeed())
		Expect(r.Stop(context.Background())).To(MatchError(errBoom))
		Expect(r.IsRunning()).To(BeTrue())
	})

	It("restarts by stopping then starting again", func() {
		var order []string
		r := etrunner.New(
			func(ctx context.Context) error { order = append(order, "start"); return nil },
			func(ctx context.Context) error { order = append(order, "stop"); return nil },
		)

		Expect(r.Start(context.Background())).To(Succeed())
		Expect(r.Restart(context.Background())).To(Succeed())
		Expect(order).To(Equal([]string{"start", "stop", "start"}))
		Expect(r.IsRunning()).To(BeTrue())
	})
})
