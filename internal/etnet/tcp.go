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

package etnet

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	etc "github.com/nabbar/etbroker/internal/etcode"
)

var (
	// ErrInvalidAddress mirrors the teacher's sentinel for an empty/malformed listen address.
	ErrInvalidAddress = etc.BadArg.Errorf("invalid listen address")
	// ErrInvalidHandler mirrors the teacher's sentinel for a nil connection handler.
	ErrInvalidHandler = etc.BadArg.Errorf("nil connection handler")
)

type tcpServer struct {
	cfg Config
	upd UpdateFunc
	hdl HandlerFunc

	mu       sync.Mutex
	ln       net.Listener
	running  int32
	open     int64
	done     chan struct{}
	group    *errgroup.Group
	groupCtx context.Context
	cancel   context.CancelFunc
}

// New builds a TCP listener server. It validates address and handler
// eagerly, matching the teacher's New(upd, hdl, cfg) contract, but does not
// bind a socket until Start.
func New(upd UpdateFunc, hdl HandlerFunc, cfg Config) (TCPServer, etc.Error) {
	if cfg.Address == "" {
		return nil, ErrInvalidAddress
	}
	if hdl == nil {
		return nil, ErrInvalidHandler
	}
	if _, _, err := net.SplitHostPort(cfg.Address); err != nil {
		return nil, etc.BadArg.Errorf("invalid address %q: %v", cfg.Address, err)
	}
	return &tcpServer{cfg: cfg, upd: upd, hdl: hdl, done: make(chan struct{})}, nil
}

// Start binds the listen socket and runs the accept loop until ctx is
// cancelled or Shutdown/Close is called.
func (s *tcpServer) Start(ctx context.Context) error {
	s.mu.Lock()
	if atomic.LoadInt32(&s.running) != 0 {
		s.mu.Unlock()
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		s.mu.Unlock()
		return etc.Network.Errorf("listening on %s: %v", s.cfg.Address, err)
	}
	s.ln = ln
	s.done = make(chan struct{})

	gctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	grp, gctx := errgroup.WithContext(gctx)
	s.group = grp
	s.groupCtx = gctx
	atomic.StoreInt32(&s.running, 1)
	s.mu.Unlock()

	grp.Go(func() error {
		defer close(s.done)
		return s.acceptLoop(gctx)
	})

	return nil
}

func (s *tcpServer) acceptLoop(ctx context.Context) error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return etc.Network.Errorf("accept: %v", err)
			}
		}
		if s.upd != nil {
			s.upd(conn)
		}
		atomic.AddInt64(&s.open, 1)
		go func() {
			defer atomic.AddInt64(&s.open, -1)
			defer conn.Close()
			s.hdl(ctx, conn)
		}()
	}
}

// Shutdown stops accepting new connections and waits for ctx to signal, or
// for the accept loop to end naturally.
func (s *tcpServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if atomic.LoadInt32(&s.running) == 0 {
		s.mu.Unlock()
		return nil
	}
	ln := s.ln
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	if cancel != nil {
		cancel()
	}
	atomic.StoreInt32(&s.running, 0)

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// Close forcibly tears down the listener without waiting for a deadline.
func (s *tcpServer) Close() error {
	return s.Shutdown(context.Background())
}

// IsRunning reports whether the accept loop is active.
func (s *tcpServer) IsRunning() bool {
	return atomic.LoadInt32(&s.running) != 0
}

// IsGone reports the inverse of IsRunning, matching the teacher's naming.
func (s *tcpServer) IsGone() bool {
	return !s.IsRunning()
}

// OpenConnections returns the count of currently handled connections.
func (s *tcpServer) OpenConnections() int64 {
	return atomic.LoadInt64(&s.open)
}

// Done returns a channel closed once the accept loop has fully exited.
func (s *tcpServer) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Addr returns the bound listener address, or nil before Start.
func (s *tcpServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}
