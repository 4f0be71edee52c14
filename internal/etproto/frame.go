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

package etproto

import (
	"bytes"
	"encoding/binary"
	"io"
	"sync"

	etc "github.com/nabbar/etbroker/internal/etcode"
)

// bufPool recycles frame buffers across requests, avoiding an allocation per
// session round-trip on the hot path. Mirrors the reset-on-release pattern
// of the teacher's ioutils/bufferReadCloser wrapper around bytes.Buffer.
var bufPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

func getBuffer() *bytes.Buffer {
	return bufPool.Get().(*bytes.Buffer)
}

func putBuffer(b *bytes.Buffer) {
	b.Reset()
	bufPool.Put(b)
}

// SafetyThreshold32 is the configured 32-bit length/memsize safety limit a
// 32-bit peer can represent; a transfer whose length exceeds it is refused
// with TOOBIG rather than silently truncated (spec 4.8).
const SafetyThreshold32 = 1<<31 - 1

// LengthPair carries an event length or memsize as hi/lo 32-bit halves, the
// wire form used whenever server and client word widths differ (spec 4.8).
type LengthPair struct {
	Hi, Lo uint32
}

// Value reassembles the pair into a 64-bit length.
func (p LengthPair) Value() uint64 {
	return uint64(p.Hi)<<32 | uint64(p.Lo)
}

// SplitLength builds the hi/lo wire pair for a 64-bit length.
func SplitLength(v uint64) LengthPair {
	return LengthPair{Hi: uint32(v >> 32), Lo: uint32(v)}
}

// RequestHeader is the fixed-size prefix of every session command frame.
type RequestHeader struct {
	Opcode  Opcode
	Session uint32
	Length  uint32
}

// WriteRequest big-endian-encodes a request header followed by payload.
func WriteRequest(w io.Writer, h RequestHeader, payload []byte) etc.Error {
	buf := getBuffer()
	defer putBuffer(buf)

	if err := binary.Write(buf, binary.BigEndian, uint16(h.Opcode)); err != nil {
		return etc.Write.Errorf("encoding opcode: %v", err)
	}
	if err := binary.Write(buf, binary.BigEndian, h.Session); err != nil {
		return etc.Write.Errorf("encoding session: %v", err)
	}
	if err := binary.Write(buf, binary.BigEndian, uint32(len(payload))); err != nil {
		return etc.Write.Errorf("encoding length: %v", err)
	}
	if len(payload) > 0 {
		if _, err := buf.Write(payload); err != nil {
			return etc.Write.Errorf("buffering payload: %v", err)
		}
	}
	if _, err := buf.WriteTo(w); err != nil {
		return etc.Write.Errorf("writing frame: %v", err)
	}
	return nil
}

// ReadRequest decodes one fixed-size header plus its declared-length
// payload from r. maxPayload guards against a corrupt or hostile length
// field exhausting memory.
func ReadRequest(r io.Reader, maxPayload uint32) (RequestHeader, []byte, etc.Error) {
	var raw [10]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return RequestHeader{}, nil, etc.Read.Errorf("reading header: %v", err)
	}

	h := RequestHeader{
		Opcode:  Opcode(binary.BigEndian.Uint16(raw[0:2])),
		Session: binary.BigEndian.Uint32(raw[2:6]),
		Length:  binary.BigEndian.Uint32(raw[6:10]),
	}
	if h.Length > maxPayload {
		return RequestHeader{}, nil, etc.TooBig.Errorf("payload length %d exceeds %d", h.Length, maxPayload)
	}

	payload := make([]byte, h.Length)
	if h.Length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return RequestHeader{}, nil, etc.Read.Errorf("reading payload: %v", err)
		}
	}
	return h, payload, nil
}

// ResponseHeader is the fixed-size prefix of every session command reply.
type ResponseHeader struct {
	Code   etc.Code
	Length uint32
}

// WriteResponse big-endian-encodes a response header followed by payload.
func WriteResponse(w io.Writer, h ResponseHeader, payload []byte) etc.Error {
	buf := getBuffer()
	defer putBuffer(buf)

	if err := binary.Write(buf, binary.BigEndian, h.Code.Uint16()); err != nil {
		return etc.Write.Errorf("encoding code: %v", err)
	}
	if err := binary.Write(buf, binary.BigEndian, uint32(len(payload))); err != nil {
		return etc.Write.Errorf("encoding length: %v", err)
	}
	if len(payload) > 0 {
		if _, err := buf.Write(payload); err != nil {
			return etc.Write.Errorf("buffering payload: %v", err)
		}
	}
	if _, err := buf.WriteTo(w); err != nil {
		return etc.Write.Errorf("writing frame: %v", err)
	}
	return nil
}

// ReadResponse decodes one response header plus its declared-length payload.
func ReadResponse(r io.Reader, maxPayload uint32) (ResponseHeader, []byte, etc.Error) {
	var raw [6]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return ResponseHeader{}, nil, etc.Read.Errorf("reading header: %v", err)
	}

	h := ResponseHeader{
		Code:   etc.Code(binary.BigEndian.Uint16(raw[0:2])),
		Length: binary.BigEndian.Uint32(raw[2:6]),
	}
	if h.Length > maxPayload {
		return ResponseHeader{}, nil, etc.TooBig.Errorf("payload length %d exceeds %d", h.Length, maxPayload)
	}

	payload := make([]byte, h.Length)
	if h.Length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return ResponseHeader{}, nil, etc.Read.Errorf("reading payload: %v", err)
		}
	}
	return h, payload, nil
}
