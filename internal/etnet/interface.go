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

// Package etnet implements the network primitives (spec section C1): a TCP
// session listener with a dedicated accept loop and a per-session handler,
// following the teacher's socket/server/tcp lifecycle contract (no
// authentication or encryption, per spec's Non-goals).
package etnet

import (
	"context"
	"net"
	"time"
)

// HandlerFunc processes one accepted connection until it closes or errors.
type HandlerFunc func(ctx context.Context, conn net.Conn)

// UpdateFunc lets a caller tweak a freshly accepted connection (e.g. set
// keepalive) before HandlerFunc takes over.
type UpdateFunc func(conn net.Conn)

// Config describes a TCP listener.
type Config struct {
	Address        string
	IdleTimeout    time.Duration
	MaxConnections int64
}

// TCPServer is the accept-loop lifecycle contract, matching the teacher's
// socket/server Start/Stop/IsRunning/Done/OpenConnections shape.
type TCPServer interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
	Close() error
	IsRunning() bool
	IsGone() bool
	OpenConnections() int64
	Done() <-chan struct{}
	Addr() net.Addr
}
