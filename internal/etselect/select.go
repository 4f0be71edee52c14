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

// Package etselect orders a discovered broker's candidate addresses by
// subnet locality and dials each in turn until one connects (spec section
// C3).
package etselect

import (
	"net"
	"strconv"
	"time"

	etc "github.com/nabbar/etbroker/internal/etcode"
)

// LocalSubnet is one local interface's address and mask, used to rank
// candidate IPs by reachability.
type LocalSubnet struct {
	Addr net.IP
	Mask net.IPMask
}

// LocalInterfaces enumerates the UP, non-loopback IPv4 subnets of this
// host, matching etnet's "enumerate-interfaces filtered to UP-and-not-
// loopback" primitive.
func LocalInterfaces() ([]LocalSubnet, etc.Error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, etc.Network.Errorf("enumerating interfaces: %v", err)
	}
	var out []LocalSubnet
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
			if ipNet.IP.To4() == nil {
				continue
			}
			out = append(out, LocalSubnet{Addr: ipNet.IP, Mask: ipNet.Mask})
		}
	}
	return out, nil
}

// SameSubnet reports whether a and b fall in the same network under mask.
func SameSubnet(a, b net.IP, mask net.IPMask) bool {
	a4, b4 := a.To4(), b.To4()
	if a4 == nil || b4 == nil {
		return false
	}
	return a4.Mask(mask).Equal(b4.Mask(mask))
}

// OrderByPreferredSubnet ranks candidates: those sharing the preferred
// broadcast subnet first, other locally-reachable subnets next, remainder
// last — mirroring spec.md's order-ips-by-preferred-subnet contract.
// Relative order within each tier is preserved (stable).
func OrderByPreferredSubnet(candidates []net.IP, local []LocalSubnet, preferred net.IP) []net.IP {
	tier := func(ip net.IP) int {
		for _, l := range local {
			if preferred != nil && SameSubnet(ip, preferred, l.Mask) && SameSubnet(ip, l.Addr, l.Mask) {
				return 0
			}
		}
		for _, l := range local {
			if SameSubnet(ip, l.Addr, l.Mask) {
				return 1
			}
		}
		return 2
	}

	ranked := make([]net.IP, len(candidates))
	copy(ranked, candidates)

	// Stable insertion sort by tier; candidate counts are small (a handful
	// of local addresses per broker), so O(n^2) is not a concern.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && tier(ranked[j]) < tier(ranked[j-1]); j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	return ranked
}

// Connect tries tcp-connect-with-timeout on each candidate in order,
// stopping on first success. On failure of all, it reports TIMEOUT.
func Connect(candidates []net.IP, port int, perAttempt time.Duration) (net.Conn, etc.Error) {
	if perAttempt <= 0 {
		perAttempt = 3 * time.Second
	}
	var lastErr error
	for _, ip := range candidates {
		addr := net.JoinHostPort(ip.String(), strconv.Itoa(port))
		conn, err := net.DialTimeout("tcp", addr, perAttempt)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, etc.Timeout.Errorf("no candidate address connected: %v", lastErr)
}
