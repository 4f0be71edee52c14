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

package etdiscovery

import (
	"context"
	"net"

	etc "github.com/nabbar/etbroker/internal/etcode"
)

// ResponderConfig configures the UDP discovery responder.
type ResponderConfig struct {
	// Filename is the broker's identity string; requests are only answered
	// when their filename matches exactly.
	Filename string
	// Port is the UDP port bound on INADDR_ANY for both unicast and
	// multicast requests.
	Port int
	// MulticastAddrs is joined on every UP, non-loopback IPv4 interface.
	MulticastAddrs []string
	// TCPPort is advertised in replies as the broker's session port.
	TCPPort uint16
	// Uname and Host populate the reply identity fields.
	Uname string
	Host  string
}

// Responder answers discovery requests with the broker's endpoint and local
// address table (spec section C2).
type Responder interface {
	Start(ctx context.Context) etc.Error
	Stop() etc.Error
	IsRunning() bool
	LocalAddr() net.Addr
}

// HostPolicy categorizes how a client should treat discovered hosts, per
// spec.md's FIRST/LOCAL/ERROR resolution table.
type HostPolicy uint8

const (
	// PolicyFirst accepts the first reply received, regardless of source.
	PolicyFirst HostPolicy = iota
	// PolicyLocal requires the reply to originate from the local host.
	PolicyLocal
	// PolicyError rejects ambiguous multi-reply resolution outright.
	PolicyError
)

// HostCategory classifies the caller's expectation about where the broker
// should be found, per spec.md's "specific host/LOCAL, ANYWHERE, REMOTE"
// categories.
type HostCategory uint8

const (
	HostSpecificOrLocal HostCategory = iota
	HostAnywhere
	HostRemote
)

// ClientConfig configures a discovery client round.
type ClientConfig struct {
	Filename       string
	BroadcastAddrs []string
	MulticastAddrs []string
	Port           int
	Policy         HostPolicy
	Category       HostCategory
	MaxRounds      int
}

// Client runs discovery rounds and resolves a single broker endpoint.
type Client interface {
	Discover(ctx context.Context) (Reply, net.Addr, etc.Error)
}
