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

package etserver

import (
	"encoding/binary"
	"io"
	"net"
	"time"

	etc "github.com/nabbar/etbroker/internal/etcode"
	etproto "github.com/nabbar/etbroker/internal/etproto"
)

// clientHello is what the client sends after the magic handshake: endian |
// filename-len | bit64-flag | 0 | 0 | filename (spec 4.4 step 3).
type clientHello struct {
	Endian   uint32
	Bit64    uint32
	Filename string
}

// serverHello is the server's reply: status | server-endian | nevents |
// eventsize-hi | eventsize-lo | version | nselects | language | bit64 | 0
// (spec 4.4 step 4).
type serverHello struct {
	Status     uint32
	ServerEndian uint32
	NEvents    uint32
	EventSize  uint64
	Version    uint32
	NSelects   uint32
	Language   uint32
	Bit64      uint32
}

const localEndian uint32 = 0x01020304

// readMagic reads exactly 12 bytes within deadline and validates the
// three-word magic gate. Mismatch or timeout is reported as BadArg so the
// caller drops the connection without replying, per spec's anti-portscan
// posture.
func readMagic(conn net.Conn, deadline time.Duration) etc.Error {
	_ = conn.SetReadDeadline(time.Now().Add(deadline))
	defer conn.SetReadDeadline(time.Time{})

	var raw [12]byte
	if _, err := io.ReadFull(conn, raw[:]); err != nil {
		return etc.BadArg.Errorf("magic handshake read: %v", err)
	}
	w1 := binary.BigEndian.Uint32(raw[0:4])
	w2 := binary.BigEndian.Uint32(raw[4:8])
	w3 := binary.BigEndian.Uint32(raw[8:12])
	if !etproto.CheckMagic(w1, w2, w3) {
		return etc.BadArg.Errorf("magic handshake mismatch")
	}
	return nil
}

func readClientHello(conn net.Conn) (clientHello, etc.Error) {
	var head [20]byte
	if _, err := io.ReadFull(conn, head[:]); err != nil {
		return clientHello{}, etc.Read.Errorf("reading client hello: %v", err)
	}
	endian := binary.BigEndian.Uint32(head[0:4])
	nameLen := binary.BigEndian.Uint32(head[4:8])
	bit64 := binary.BigEndian.Uint32(head[8:12])

	name := make([]byte, nameLen)
	if nameLen > 0 {
		if _, err := io.ReadFull(conn, name); err != nil {
			return clientHello{}, etc.Read.Errorf("reading client filename: %v", err)
		}
	}
	return clientHello{Endian: endian, Bit64: bit64, Filename: string(name)}, nil
}

func writeServerHello(conn net.Conn, h serverHello) etc.Error {
	var buf [40]byte
	binary.BigEndian.PutUint32(buf[0:4], h.Status)
	binary.BigEndian.PutUint32(buf[4:8], h.ServerEndian)
	binary.BigEndian.PutUint32(buf[8:12], h.NEvents)
	sz := etproto.SplitLength(h.EventSize)
	binary.BigEndian.PutUint32(buf[12:16], sz.Hi)
	binary.BigEndian.PutUint32(buf[16:20], sz.Lo)
	binary.BigEndian.PutUint32(buf[20:24], h.Version)
	binary.BigEndian.PutUint32(buf[24:28], h.NSelects)
	binary.BigEndian.PutUint32(buf[28:32], h.Language)
	binary.BigEndian.PutUint32(buf[32:36], h.Bit64)
	binary.BigEndian.PutUint32(buf[36:40], 0)
	if _, err := conn.Write(buf[:]); err != nil {
		return etc.Write.Errorf("writing server hello: %v", err)
	}
	return nil
}
