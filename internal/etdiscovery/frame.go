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

// Package etdiscovery implements the UDP discovery responder and client
// (spec section C2): a broker publishes its TCP endpoint and every local IP
// and broadcast address over UDP broad/multicast; a client collects replies
// under a growing per-round deadline and applies a host/policy resolution.
package etdiscovery

import (
	"bytes"
	"encoding/binary"
	"net"

	etc "github.com/nabbar/etbroker/internal/etcode"
	etproto "github.com/nabbar/etbroker/internal/etproto"
)

// CastType is the informational cast kind carried in a reply.
type CastType uint32

const (
	CastBroadcast CastType = iota
	CastMulticast
)

// AddrEntry pairs a local IP with its positionally-keyed broadcast string,
// per spec.md §6's "current form" wire addendum.
type AddrEntry struct {
	IP        net.IP
	Broadcast string
}

// Request is the UDP discovery request frame: magic3 | version | filename.
type Request struct {
	Version  uint32
	Filename string
}

// Encode serializes a Request frame.
func (r Request) Encode() []byte {
	var buf bytes.Buffer
	writeMagic(&buf)
	_ = binary.Write(&buf, binary.BigEndian, r.Version)
	writeString(&buf, r.Filename)
	return buf.Bytes()
}

// DecodeRequest parses a Request frame, validating the magic gate.
func DecodeRequest(data []byte) (Request, etc.Error) {
	r := bytes.NewReader(data)
	if err := checkMagicFrom(r); err != nil {
		return Request{}, err
	}
	var version uint32
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return Request{}, etc.Read.Errorf("reading version: %v", err)
	}
	name, err := readString(r)
	if err != nil {
		return Request{}, err
	}
	return Request{Version: version, Filename: name}, nil
}

// Reply is the UDP discovery reply frame, matching spec.md §6's layout:
// magic3 | version | tcp-port | cast-type | castip-len=0 | uname | host |
// n-addrs{ip} | n-addrs{broadcast}.
type Reply struct {
	Version  uint32
	TCPPort  uint16
	Cast     CastType
	Uname    string
	Host     string
	Addrs    []AddrEntry
}

// Encode serializes a Reply frame. The legacy cast-IP field is always
// written with length zero, per spec.md's open question resolution: accept
// both old and new peers, but only ever send the zero form.
func (r Reply) Encode() []byte {
	var buf bytes.Buffer
	writeMagic(&buf)
	_ = binary.Write(&buf, binary.BigEndian, r.Version)
	_ = binary.Write(&buf, binary.BigEndian, uint32(r.TCPPort))
	_ = binary.Write(&buf, binary.BigEndian, uint32(r.Cast))
	_ = binary.Write(&buf, binary.BigEndian, uint32(0)) // castip-len, always 0
	writeString(&buf, r.Uname)
	writeString(&buf, r.Host)

	_ = binary.Write(&buf, binary.BigEndian, uint32(len(r.Addrs)))
	for _, a := range r.Addrs {
		ip4 := a.IP.To4()
		var netOrder uint32
		if ip4 != nil {
			netOrder = binary.BigEndian.Uint32(ip4)
		}
		_ = binary.Write(&buf, binary.BigEndian, netOrder)
		writeString(&buf, a.IP.String())
	}

	_ = binary.Write(&buf, binary.BigEndian, uint32(len(r.Addrs)))
	for _, a := range r.Addrs {
		writeString(&buf, a.Broadcast)
	}

	return buf.Bytes()
}

// DecodeReply parses a Reply frame. If the broadcast-string table is
// shorter than the address table (or absent), the broker is treated as the
// older wire form and Addrs[i].Broadcast is left empty for the missing
// entries (spec.md §6: "degrade subnet ordering accordingly").
func DecodeReply(data []byte) (Reply, etc.Error) {
	r := bytes.NewReader(data)
	if err := checkMagicFrom(r); err != nil {
		return Reply{}, err
	}

	var version, tcpPort, cast, castIPLen uint32
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return Reply{}, etc.Read.Errorf("reading version: %v", err)
	}
	if err := binary.Read(r, binary.BigEndian, &tcpPort); err != nil {
		return Reply{}, etc.Read.Errorf("reading tcp port: %v", err)
	}
	if err := binary.Read(r, binary.BigEndian, &cast); err != nil {
		return Reply{}, etc.Read.Errorf("reading cast type: %v", err)
	}
	if err := binary.Read(r, binary.BigEndian, &castIPLen); err != nil {
		return Reply{}, etc.Read.Errorf("reading cast-ip length: %v", err)
	}
	if castIPLen > 0 {
		skip := make([]byte, castIPLen)
		if _, err := r.Read(skip); err != nil {
			return Reply{}, etc.Read.Errorf("skipping legacy cast-ip: %v", err)
		}
	}

	uname, err := readString(r)
	if err != nil {
		return Reply{}, err
	}
	host, err := readString(r)
	if err != nil {
		return Reply{}, err
	}

	var nAddrs uint32
	if err := binary.Read(r, binary.BigEndian, &nAddrs); err != nil {
		return Reply{}, etc.Read.Errorf("reading address count: %v", err)
	}

	entries := make([]AddrEntry, nAddrs)
	for i := range entries {
		var netOrder uint32
		if err := binary.Read(r, binary.BigEndian, &netOrder); err != nil {
			return Reply{}, etc.Read.Errorf("reading address %d: %v", i, err)
		}
		ipStr, err := readString(r)
		if err != nil {
			return Reply{}, err
		}
		ip := net.ParseIP(ipStr)
		if ip == nil {
			ip = make(net.IP, 4)
			binary.BigEndian.PutUint32(ip, netOrder)
		}
		entries[i].IP = ip
	}

	var nBcast uint32
	if err := binary.Read(r, binary.BigEndian, &nBcast); err == nil {
		for i := uint32(0); i < nBcast && int(i) < len(entries); i++ {
			bc, berr := readString(r)
			if berr != nil {
				break
			}
			entries[i].Broadcast = bc
		}
	}

	return Reply{
		Version: version,
		TCPPort: uint16(tcpPort),
		Cast:    CastType(cast),
		Uname:   uname,
		Host:    host,
		Addrs:   entries,
	}, nil
}

func writeMagic(buf *bytes.Buffer) {
	_ = binary.Write(buf, binary.BigEndian, etproto.MagicWord1)
	_ = binary.Write(buf, binary.BigEndian, etproto.MagicWord2)
	_ = binary.Write(buf, binary.BigEndian, etproto.MagicWord3)
}

func checkMagicFrom(r *bytes.Reader) etc.Error {
	var w1, w2, w3 uint32
	if err := binary.Read(r, binary.BigEndian, &w1); err != nil {
		return etc.Read.Errorf("reading magic word 1: %v", err)
	}
	if err := binary.Read(r, binary.BigEndian, &w2); err != nil {
		return etc.Read.Errorf("reading magic word 2: %v", err)
	}
	if err := binary.Read(r, binary.BigEndian, &w3); err != nil {
		return etc.Read.Errorf("reading magic word 3: %v", err)
	}
	if !etproto.CheckMagic(w1, w2, w3) {
		return etc.BadArg.Errorf("magic gate mismatch")
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) {
	_ = binary.Write(buf, binary.BigEndian, uint32(len(s)))
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, etc.Error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", etc.Read.Errorf("reading string length: %v", err)
	}
	b := make([]byte, n)
	if n > 0 {
		if _, err := r.Read(b); err != nil {
			return "", etc.Read.Errorf("reading string body: %v", err)
		}
	}
	return string(b), nil
}
