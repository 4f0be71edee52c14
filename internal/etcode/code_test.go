/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package etcode_test

import (
	"errors"

	etc "github.com/nabbar/etbroker/internal/etcode"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Code", func() {
	It("carries a stable numeric value and message", func() {
		Expect(etc.Timeout.Uint16()).To(Equal(uint16(100)))
		Expect(etc.Timeout.Message()).To(ContainSubstring("deadline"))
	})

	It("builds an Error with that code", func() {
		e := etc.Empty.Error()
		Expect(e.Code()).To(Equal(etc.Empty))
		Expect(e.IsCode(etc.Empty)).To(BeTrue())
		Expect(e.IsCode(etc.Busy)).To(BeFalse())
	})

	It("chains parents and finds codes transitively", func() {
		root := etc.Network.Error()
		wrapped := etc.Closed.Error(root)
		Expect(wrapped.HasCode(etc.Network)).To(BeTrue())
		Expect(wrapped.HasCode(etc.Busy)).To(BeFalse())
	})

	It("supports errors.Is by code", func() {
		a := etc.TooBig.Error()
		b := etc.TooBig.Error()
		Expect(errors.Is(a, b)).To(BeTrue())
	})

	It("captures a non-empty call-site trace", func() {
		e := etc.BadArg.Error()
		Expect(e.Trace()).ToNot(BeEmpty())
	})
})
