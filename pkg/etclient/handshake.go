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

package etclient

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	etproto "github.com/nabbar/etbroker/internal/etproto"
)

const localEndian uint32 = 0x01020304

// writeHandshake sends the 12-byte magic gate followed by the 20-byte-plus-
// filename client hello, mirroring etserver's readMagic/readClientHello in
// reverse (spec 4.4 steps 1-3).
func writeHandshake(conn net.Conn, filename string) error {
	var magic [12]byte
	binary.BigEndian.PutUint32(magic[0:4], etproto.MagicWord1)
	binary.BigEndian.PutUint32(magic[4:8], etproto.MagicWord2)
	binary.BigEndian.PutUint32(magic[8:12], etproto.MagicWord3)
	if _, err := conn.Write(magic[:]); err != nil {
		return fmt.Errorf("etclient: writing magic: %w", err)
	}

	head := make([]byte, 20+len(filename))
	binary.BigEndian.PutUint32(head[0:4], localEndian)
	binary.BigEndian.PutUint32(head[4:8], uint32(len(filename)))
	binary.BigEndian.PutUint32(head[8:12], 0) // bit64: unused, kept for wire parity
	binary.BigEndian.PutUint32(head[12:16], 0)
	binary.BigEndian.PutUint32(head[16:20], 0)
	copy(head[20:], filename)
	if _, err := conn.Write(head); err != nil {
		return fmt.Errorf("etclient: writing client hello: %w", err)
	}
	return nil
}

// readHandshake reads the fixed 40-byte server hello (spec 4.4 step 4).
func readHandshake(conn net.Conn) (Hello, error) {
	var buf [40]byte
	if _, err := io.ReadFull(conn, buf[:]); err != nil {
		return Hello{}, fmt.Errorf("etclient: reading server hello: %w", err)
	}

	status := binary.BigEndian.Uint32(buf[0:4])
	if status != 0 {
		return Hello{}, fmt.Errorf("etclient: server hello reported status %d", status)
	}

	hi := binary.BigEndian.Uint32(buf[12:16])
	lo := binary.BigEndian.Uint32(buf[16:20])
	return Hello{
		ServerEndian: binary.BigEndian.Uint32(buf[4:8]),
		NEvents:      binary.BigEndian.Uint32(buf[8:12]),
		EventSize:    uint64(hi)<<32 | uint64(lo),
		Version:      binary.BigEndian.Uint32(buf[20:24]),
		NSelects:     binary.BigEndian.Uint32(buf[24:28]),
		Language:     binary.BigEndian.Uint32(buf[28:32]),
	}, nil
}

func dial(address string, cfg Config) (Client, error) {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.MaxPayload == 0 {
		cfg.MaxPayload = 64 << 20
	}

	conn, err := net.DialTimeout("tcp", address, cfg.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("etclient: dial %s: %w", address, err)
	}

	deadline := time.Now().Add(cfg.DialTimeout)
	_ = conn.SetDeadline(deadline)

	if err := writeHandshake(conn, cfg.Filename); err != nil {
		_ = conn.Close()
		return nil, err
	}
	hello, err := readHandshake(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})

	return &client{conn: conn, cfg: cfg, hello: hello}, nil
}
