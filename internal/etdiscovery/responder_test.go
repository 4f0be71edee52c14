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
	"context"
	"net"
	"time"

	etdiscovery "github.com/nabbar/etbroker/internal/etdiscovery"
	etproto "github.com/nabbar/etbroker/internal/etproto"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("discovery responder", func() {
	It("answers a matching unicast request and ignores a mismatched filename", func() {
		resp, err := etdiscovery.NewResponder(etdiscovery.ResponderConfig{
			Filename: "broker-1",
			Port:     0,
			TCPPort:  9999,
			Uname:    "tester",
			Host:     "tester.local",
		})
		Expect(err).To(BeNil())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		Expect(resp.Start(ctx)).To(BeNil())
		defer resp.Stop()

		conn, derr := net.DialUDP("udp4", nil, resp.LocalAddr().(*net.UDPAddr))
		Expect(derr).To(BeNil())
		defer conn.Close()

		bad := etdiscovery.Request{Version: etproto.Version, Filename: "not-me"}
		_, _ = conn.Write(bad.Encode())
		_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		buf := make([]byte, 2048)
		_, rerr := conn.Read(buf)
		Expect(rerr).NotTo(BeNil())

		good := etdiscovery.Request{Version: etproto.Version, Filename: "broker-1"}
		_, _ = conn.Write(good.Encode())
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		n, rerr2 := conn.Read(buf)
		Expect(rerr2).To(BeNil())

		reply, derr2 := etdiscovery.DecodeReply(buf[:n])
		Expect(derr2).To(BeNil())
		Expect(reply.TCPPort).To(Equal(uint16(9999)))
		Expect(reply.Host).To(Equal("tester.local"))
	})
})
