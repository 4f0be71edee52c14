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

// Package etclient is a thin remote client for the session protocol (spec
// section C4): it speaks the same handshake and opcode frames etserver's
// session loop answers, giving an external process attach/get/put/new/dump
// access to a running broker without linking internal/etattach directly.
package etclient

import (
	"time"

	etpool "github.com/nabbar/etbroker/internal/etpool"
	etstation "github.com/nabbar/etbroker/internal/etstation"
)

// Hello is what the server reports back during the handshake (spec 4.4
// step 4): its endianness, pool shape, protocol version, and select width.
type Hello struct {
	ServerEndian uint32
	NEvents      uint32
	EventSize    uint64
	Version      uint32
	NSelects     uint32
	Language     uint32
}

// Event is the event transfer frame's metadata plus payload, the client's
// view of an etpool.Header without the pool-internal Owner/Temp bookkeeping.
type Event struct {
	Place      int32
	Length     uint32
	MemSize    uint32
	Priority   etpool.Priority
	DataStatus etpool.DataStatus
	ByteOrder  uint32
	Control    []int64
	Data       []byte
}

// Config dials and handshakes one session.
type Config struct {
	// Filename is the broker's identity string; a mismatch fails the dial.
	Filename string
	// DialTimeout bounds the TCP connect and handshake round-trip.
	DialTimeout time.Duration
	// RequestTimeout bounds every request/response round trip after the
	// handshake; zero disables the deadline.
	RequestTimeout time.Duration
	// MaxPayload bounds a single response frame's declared length.
	MaxPayload uint32
}

// Client is a connected, handshaked session. Not safe for concurrent use by
// multiple goroutines, matching the server's one-request-at-a-time loop.
type Client interface {
	Hello() Hello

	AttachMake(station string) (string, error)
	Detach(attachmentID string) error

	EventNew(attachmentID string, group int, mode etpool.AllocMode, timeout time.Duration) (int32, error)
	EventGet(attachmentID string, mode etstation.FlowModeWait, timeout time.Duration) (Event, error)
	EventPut(attachmentID string, ev Event, modify etpool.Modify) error
	EventDump(attachmentID string, place int32) error

	WakeAttachment(attachmentID string) error
	WakeStation(station string) error

	Close() error
}

// Dial connects to address, performs the magic + hello handshake, and
// returns a ready Client.
func Dial(address string, cfg Config) (Client, error) {
	return dial(address, cfg)
}
