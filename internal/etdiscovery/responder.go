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
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/ipv4"

	etc "github.com/nabbar/etbroker/internal/etcode"
	etproto "github.com/nabbar/etbroker/internal/etproto"
)

type responder struct {
	cfg   ResponderConfig
	conn  *net.UDPConn
	pconn *ipv4.PacketConn

	mu      sync.Mutex
	running int32
	done    chan struct{}
	reply   []byte
}

// NewResponder builds a discovery responder bound to INADDR_ANY on
// cfg.Port, joined to cfg.MulticastAddrs on every UP non-loopback IPv4
// interface (net.ListenMulticastUDP only joins one interface at a time, so
// golang.org/x/net/ipv4 drives the per-interface JoinGroup calls directly).
func NewResponder(cfg ResponderConfig) (Responder, etc.Error) {
	if cfg.Filename == "" {
		return nil, etc.BadArg.Errorf("responder requires a non-empty filename")
	}
	return &responder{cfg: cfg, done: make(chan struct{})}, nil
}

func (r *responder) Start(ctx context.Context) etc.Error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if atomic.LoadInt32(&r.running) != 0 {
		return nil
	}

	laddr := &net.UDPAddr{IP: net.IPv4zero, Port: r.cfg.Port}
	conn, err := net.ListenUDP("udp4", laddr)
	if err != nil {
		return etc.Network.Errorf("binding discovery UDP port %d: %v", r.cfg.Port, err)
	}

	pconn := ipv4.NewPacketConn(conn)
	if jerr := joinAllInterfaces(pconn, r.cfg.MulticastAddrs); jerr != nil {
		_ = conn.Close()
		return jerr
	}

	r.conn = conn
	r.pconn = pconn
	r.reply = r.buildReply().Encode()
	r.done = make(chan struct{})
	atomic.StoreInt32(&r.running, 1)

	go r.serve(ctx)
	return nil
}

func joinAllInterfaces(pconn *ipv4.PacketConn, mcastAddrs []string) etc.Error {
	if len(mcastAddrs) == 0 {
		return nil
	}
	ifaces, err := net.Interfaces()
	if err != nil {
		return etc.Network.Errorf("enumerating interfaces: %v", err)
	}

	joined := 0
	for _, ifc := range ifaces {
		if ifc.Flags&net.FlagUp == 0 || ifc.Flags&net.FlagLoopback != 0 {
			continue
		}
		if ifc.Flags&net.FlagMulticast == 0 {
			continue
		}
		for _, a := range mcastAddrs {
			ip := net.ParseIP(a)
			if ip == nil || ip.To4() == nil {
				continue
			}
			group := &net.UDPAddr{IP: ip}
			ifCopy := ifc
			if jerr := pconn.JoinGroup(&ifCopy, group); jerr == nil {
				joined++
			}
		}
	}
	if joined == 0 {
		return etc.Network.Errorf("no interface accepted any multicast join for %v", mcastAddrs)
	}
	return nil
}

func (r *responder) buildReply() Reply {
	addrs := localAddrTable()
	return Reply{
		Version: etproto.Version,
		TCPPort: r.cfg.TCPPort,
		Cast:    CastMulticast,
		Uname:   r.cfg.Uname,
		Host:    r.cfg.Host,
		Addrs:   addrs,
	}
}

// localAddrTable enumerates every UP non-loopback IPv4 address along with
// its subnet broadcast string, per spec.md's addressing table layout.
func localAddrTable() []AddrEntry {
	var out []AddrEntry
	ifaces, err := net.Interfaces()
	if err != nil {
		return out
	}
	for _, ifc := range ifaces {
		if ifc.Flags&net.FlagUp == 0 || ifc.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, aerr := ifc.Addrs()
		if aerr != nil {
			continue
		}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			ip4 := ipNet.IP.To4()
			if ip4 == nil {
				continue
			}
			out = append(out, AddrEntry{IP: ip4, Broadcast: broadcastOf(ipNet)})
		}
	}
	return out
}

func broadcastOf(n *net.IPNet) string {
	ip4 := n.IP.To4()
	if ip4 == nil {
		return ""
	}
	mask := n.Mask
	bcast := make(net.IP, 4)
	for i := range ip4 {
		bcast[i] = ip4[i] | ^mask[i]
	}
	return bcast.String()
}

func (r *responder) serve(ctx context.Context) {
	defer close(r.done)
	buf := make([]byte, 2048)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_ = r.conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		n, addr, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			if atomic.LoadInt32(&r.running) == 0 {
				return
			}
			continue
		}

		req, derr := DecodeRequest(buf[:n])
		if derr != nil {
			continue
		}
		if req.Filename != r.cfg.Filename {
			continue
		}
		_, _ = r.conn.WriteToUDP(r.reply, addr)
	}
}

func (r *responder) Stop() etc.Error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if atomic.LoadInt32(&r.running) == 0 {
		return nil
	}
	atomic.StoreInt32(&r.running, 0)
	if r.conn != nil {
		_ = r.conn.Close()
	}
	<-r.done
	return nil
}

func (r *responder) IsRunning() bool {
	return atomic.LoadInt32(&r.running) != 0
}

func (r *responder) LocalAddr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return nil
	}
	return r.conn.LocalAddr()
}

