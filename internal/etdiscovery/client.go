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
	"time"

	etc "github.com/nabbar/etbroker/internal/etcode"
	etproto "github.com/nabbar/etbroker/internal/etproto"
)

type client struct {
	cfg ClientConfig
}

// NewClient builds a discovery client that fires one request per configured
// broadcast/multicast target and resolves replies under a growing per-round
// deadline (spec section C2).
func NewClient(cfg ClientConfig) Client {
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = 6
	}
	return &client{cfg: cfg}
}

type candidateReply struct {
	reply Reply
	from  net.Addr
}

// Discover sends the request frame from a single UDP socket to every
// configured broadcast and multicast target, then waits through growing deadlines
// (0,1,2,3,4,5 additional seconds) collecting replies until MaxRounds is
// exhausted or a round yields a resolvable answer under the configured
// policy.
func (c *client) Discover(ctx context.Context) (Reply, net.Addr, etc.Error) {
	req := Request{Version: etproto.Version, Filename: c.cfg.Filename}
	payload := req.Encode()

	targets := make([]string, 0, len(c.cfg.BroadcastAddrs)+len(c.cfg.MulticastAddrs))
	targets = append(targets, c.cfg.BroadcastAddrs...)
	targets = append(targets, c.cfg.MulticastAddrs...)
	if len(targets) == 0 {
		return Reply{}, nil, etc.BadArg.Errorf("no broadcast or multicast target configured")
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return Reply{}, nil, etc.Network.Errorf("opening discovery client socket: %v", err)
	}
	defer conn.Close()

	for _, t := range targets {
		addr := &net.UDPAddr{IP: net.ParseIP(t), Port: c.cfg.Port}
		if addr.IP == nil {
			continue
		}
		_, _ = conn.WriteToUDP(payload, addr)
	}

	var collected []candidateReply
	buf := make([]byte, 2048)

	for round := 0; round < c.cfg.MaxRounds; round++ {
		select {
		case <-ctx.Done():
			return Reply{}, nil, etc.Timeout.Errorf("discovery cancelled: %v", ctx.Err())
		default:
		}

		extra := time.Duration(round) * time.Second
		_ = conn.SetReadDeadline(time.Now().Add(extra))

		n, from, rerr := conn.ReadFromUDP(buf)
		if rerr != nil {
			continue
		}
		reply, derr := DecodeReply(buf[:n])
		if derr != nil {
			continue
		}
		collected = append(collected, candidateReply{reply: reply, from: from})

		if resolved, addr, ok := c.resolve(collected); ok {
			return resolved, addr, nil
		}
	}

	if resolved, addr, ok := c.resolve(collected); ok {
		return resolved, addr, nil
	}
	return Reply{}, nil, etc.Empty.Errorf("no discovery reply satisfied policy after %d rounds", c.cfg.MaxRounds)
}

// resolve applies the FIRST/LOCAL/ERROR policy against the category of
// caller expectation (specific host/LOCAL, ANYWHERE, REMOTE).
func (c *client) resolve(collected []candidateReply) (Reply, net.Addr, bool) {
	if len(collected) == 0 {
		return Reply{}, nil, false
	}

	switch c.cfg.Policy {
	case PolicyFirst:
		return collected[0].reply, collected[0].from, true

	case PolicyLocal:
		for _, cr := range collected {
			if isLocalReply(cr) {
				return cr.reply, cr.from, true
			}
		}
		if c.cfg.Category == HostAnywhere {
			return collected[0].reply, collected[0].from, true
		}
		return Reply{}, nil, false

	case PolicyError:
		if len(collected) == 1 {
			return collected[0].reply, collected[0].from, true
		}
		return Reply{}, nil, false
	}

	return Reply{}, nil, false
}

func isLocalReply(cr candidateReply) bool {
	udpAddr, ok := cr.from.(*net.UDPAddr)
	if !ok {
		return false
	}
	for _, a := range cr.reply.Addrs {
		if a.IP.Equal(udpAddr.IP) {
			return true
		}
	}
	return udpAddr.IP.IsLoopback()
}
