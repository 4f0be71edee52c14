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

package etdiscovery_test

import (
	"net"

	etdiscovery "github.com/nabbar/etbroker/internal/etdiscovery"
	etproto "github.com/nabbar/etbroker/internal/etproto"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("discovery frames", func() {
	It("round-trips a request frame", func() {
		req := etdiscovery.Request{Version: etproto.Version, Filename: "broker-1"}
		decoded, err := etdiscovery.DecodeRequest(req.Encode())
		Expect(err).To(BeNil())
		Expect(decoded.Version).To(Equal(etproto.Version))
		Expect(decoded.Filename).To(Equal("broker-1"))
	})

	It("rejects a request with a corrupted magic gate", func() {
		raw := etdiscovery.Request{Version: etproto.Version, Filename: "x"}.Encode()
		raw[0] ^= 0xFF
		_, err := etdiscovery.DecodeRequest(raw)
		Expect(err).NotTo(BeNil())
	})

	It("round-trips a reply frame with addresses and broadcast strings", func() {
		rep := etdiscovery.Reply{
			Version: etproto.Version,
			TCPPort: 11111,
			Cast:    etdiscovery.CastMulticast,
			Uname:   "broker",
			Host:    "broker.local",
			Addrs: []etdiscovery.AddrEntry{
				{IP: net.ParseIP("10.0.0.5").To4(), Broadcast: "10.0.0.255"},
				{IP: net.ParseIP("192.168.1.7").To4(), Broadcast: "192.168.1.255"},
			},
		}
		decoded, err := etdiscovery.DecodeReply(rep.Encode())
		Expect(err).To(BeNil())
		Expect(decoded.TCPPort).To(Equal(uint16(11111)))
		Expect(decoded.Host).To(Equal("broker.local"))
		Expect(decoded.Addrs).To(HaveLen(2))
		Expect(decoded.Addrs[0].IP.String()).To(Equal("10.0.0.5"))
		Expect(decoded.Addrs[0].Broadcast).To(Equal("10.0.0.255"))
		Expect(decoded.Addrs[1].Broadcast).To(Equal("192.168.1.255"))
	})

	It("decodes a reply missing the broadcast table as the legacy wire form", func() {
		rep := etdiscovery.Reply{
			Version: etproto.Version,
			TCPPort: 2000,
			Cast:    etdiscovery.CastBroadcast,
			Uname:   "legacy",
			Host:    "legacy.local",
			Addrs: []etdiscovery.AddrEntry{
				{IP: net.ParseIP("10.0.0.9").To4()},
			},
		}
		raw := rep.Encode()
		// Broadcast table for one empty-string entry: 4 (count) + 4 (one zero-length string).
		truncated := raw[:len(raw)-8]
		decoded, err := etdiscovery.DecodeReply(truncated)
		Expect(err).To(BeNil())
		Expect(decoded.Addrs).To(HaveLen(1))
		Expect(decoded.Addrs[0].Broadcast).To(Equal(""))
	})
})
