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

package etselect_test

import (
	"net"
	"time"

	etc "github.com/nabbar/etbroker/internal/etcode"
	etselect "github.com/nabbar/etbroker/internal/etselect"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("subnet ordering", func() {
	local := []etselect.LocalSubnet{
		{Addr: net.ParseIP("10.0.0.5"), Mask: net.CIDRMask(24, 32)},
	}

	It("puts the preferred subnet first, other local subnets next, remainder last", func() {
		candidates := []net.IP{
			net.ParseIP("203.0.113.9"),  // remainder
			net.ParseIP("10.0.0.42"),    // preferred subnet
			net.ParseIP("192.168.1.1"),  // no local match, remainder
		}
		preferred := net.ParseIP("10.0.0.1")

		ranked := etselect.OrderByPreferredSubnet(candidates, local, preferred)
		Expect(ranked[0].String()).To(Equal("10.0.0.42"))
	})

	It("reports SameSubnet correctly", func() {
		mask := net.CIDRMask(24, 32)
		Expect(etselect.SameSubnet(net.ParseIP("10.0.0.5"), net.ParseIP("10.0.0.200"), mask)).To(BeTrue())
		Expect(etselect.SameSubnet(net.ParseIP("10.0.0.5"), net.ParseIP("10.0.1.200"), mask)).To(BeFalse())
	})
})

var _ = Describe("Connect", func() {
	It("connects to the first reachable candidate and skips unreachable ones", func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).To(BeNil())
		defer ln.Close()

		go func() {
			c, aerr := ln.Accept()
			if aerr == nil {
				_ = c.Close()
			}
		}()

		addr := ln.Addr().(*net.TCPAddr)
		candidates := []net.IP{net.ParseIP("192.0.2.1"), addr.IP}

		conn, cerr := etselect.Connect(candidates, addr.Port, 2*time.Second)
		Expect(cerr).To(BeNil())
		Expect(conn).NotTo(BeNil())
		_ = conn.Close()
	})

	It("reports TIMEOUT when no candidate connects", func() {
		_, err := etselect.Connect([]net.IP{net.ParseIP("192.0.2.1")}, 1, 200*time.Millisecond)
		Expect(err).NotTo(BeNil())
		Expect(err.IsCode(etc.Timeout)).To(BeTrue())
	})
})
