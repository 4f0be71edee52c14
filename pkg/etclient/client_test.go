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

package etclient_test

import (
	"context"
	"net"
	"time"

	etpool "github.com/nabbar/etbroker/internal/etpool"
	etserver "github.com/nabbar/etbroker/internal/etserver"
	etstation "github.com/nabbar/etbroker/internal/etstation"
	etclient "github.com/nabbar/etbroker/pkg/etclient"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func startTestBroker() (addr string, stop func()) {
	pool, err := etpool.New(4, 64, nil, 2)
	Expect(err).To(BeNil())
	sys := etstation.NewSystem(pool, nil)

	ln, lerr := net.Listen("tcp", "127.0.0.1:0")
	Expect(lerr).To(BeNil())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for {
			conn, aerr := ln.Accept()
			if aerr != nil {
				return
			}
			go etserver.Handle(ctx, conn, etserver.Config{System: sys, Filename: "broker-test"})
		}
	}()

	return ln.Addr().String(), func() {
		cancel()
		_ = ln.Close()
	}
}

var _ = Describe("Client", func() {
	It("attaches, allocates, fills, and puts back an event over a real TCP round trip", func() {
		addr, stop := startTestBroker()
		defer stop()

		cl, err := etclient.Dial(addr, etclient.Config{
			Filename:       "broker-test",
			DialTimeout:    2 * time.Second,
			RequestTimeout: 2 * time.Second,
		})
		Expect(err).To(BeNil())
		defer cl.Close()

		Expect(cl.Hello().NEvents).To(Equal(uint32(4)))

		attID, aerr := cl.AttachMake(etstation.GrandCentralName)
		Expect(aerr).To(BeNil())
		Expect(attID).ToNot(BeEmpty())

		place, nerr := cl.EventNew(attID, 0, etpool.AllocAsync, 0)
		Expect(nerr).To(BeNil())

		ev := etclient.Event{
			Place:   place,
			Length:  5,
			MemSize: 64,
			Data:    []byte("hello"),
		}
		Expect(cl.EventPut(attID, ev, etpool.ModifyFull)).To(Succeed())

		Expect(cl.Detach(attID)).To(Succeed())
	})

	It("fails to dial with a mismatched filename", func() {
		addr, stop := startTestBroker()
		defer stop()

		_, err := etclient.Dial(addr, etclient.Config{
			Filename:    "wrong-name",
			DialTimeout: 2 * time.Second,
		})
		Expect(err).ToNot(BeNil())
	})
})
