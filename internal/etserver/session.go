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

package etserver

import (
	"context"
	"encoding/binary"
	"net"
	"time"

	etc "github.com/nabbar/etbroker/internal/etcode"
	etattach "github.com/nabbar/etbroker/internal/etattach"
	etproto "github.com/nabbar/etbroker/internal/etproto"
	etwake "github.com/nabbar/etbroker/internal/etwake"
)

// session is the per-connection state for one server command loop (spec
// 4.8). scratchIdx is preallocated once at session start, sized to the
// pool; no opcode handler reads it.
type session struct {
	conn net.Conn
	cfg  Config
	mgr  *etattach.Manager
	beat *etwake.Tracker

	scratchIdx []int // preallocated index list, unused by the handlers
}

// Handle runs one session to completion: handshake, opcode dispatch loop,
// then unconditional cleanup (spec 4.8's "on session end, any reason,
// detach all").
func Handle(ctx context.Context, conn net.Conn, cfg Config) {
	cfg = cfg.withDefaults()

	if err := readMagic(conn, cfg.HandshakeDeadline); err != nil {
		logDrop(cfg, err)
		return
	}
	hello, err := readClientHello(conn)
	if err != nil {
		logDrop(cfg, err)
		return
	}
	if cfg.Filename != "" && hello.Filename != cfg.Filename {
		logDrop(cfg, etc.BadArg.Errorf("filename mismatch: client sent %q", hello.Filename))
		return
	}

	pool := cfg.System.Pool()
	status := uint32(etc.OK)
	if err := writeServerHello(conn, serverHello{
		Status:       status,
		ServerEndian: localEndian,
		NEvents:      uint32(pool.NEvents()),
		EventSize:    uint64(pool.EventSize()),
		Version:      etproto.Version,
		NSelects:     uint32(pool.NSelects()),
		Language:     cfg.Language,
		Bit64:        hello.Bit64,
	}); err != nil {
		logDrop(cfg, err)
		return
	}

	s := &session{
		conn:       conn,
		cfg:        cfg,
		mgr:        etattach.NewManager(cfg.System),
		beat:       etwake.NewTracker(),
		scratchIdx: make([]int, 0, pool.NEvents()),
	}
	defer s.cleanup()

	// Watch fires MarkAllDead only once the session hasn't read a single
	// request frame for the whole timeout window; clients relying on long
	// blocking GETs are expected to poll with ALIVE/WAIT often enough to
	// keep this fed, same as any TIMED wait already does internally.
	stopWatch := etwake.Watch(ctx, s.beat, etwake.Config{}, s.mgr.MarkAllDead)
	defer stopWatch()

	s.loop(ctx)
}

func (s *session) cleanup() {
	_ = s.mgr.DetachAll()
}

func logDrop(cfg Config, err etc.Error) {
	if cfg.Logger != nil {
		cfg.Logger.WithError(err).Debug("dropping session during handshake")
	}
}

// loop reads one request frame at a time and dispatches it, writing exactly
// one response frame per request. It returns on I/O error, CLOSE/KILL, or
// ctx cancellation.
func (s *session) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		hdr, payload, rerr := etproto.ReadRequest(s.conn, s.cfg.MaxPayload)
		if rerr != nil {
			return
		}
		s.beat.Touch()

		code, resp := s.dispatch(ctx, hdr.Opcode, payload)
		werr := etproto.WriteResponse(s.conn, etproto.ResponseHeader{Code: code}, resp)
		if werr != nil {
			return
		}
		if hdr.Opcode == etproto.OpClose || hdr.Opcode == etproto.OpForceClose || hdr.Opcode == etproto.OpKill {
			return
		}
	}
}

// dispatch routes one opcode, mirroring et_server.c's switch-by-category
// structure reflected in etproto.Opcode.Category.
func (s *session) dispatch(ctx context.Context, op etproto.Opcode, payload []byte) (etc.Code, []byte) {
	switch op {
	case etproto.OpAttMake:
		return s.handleAttMake(payload)
	case etproto.OpStatAttach:
		return s.handleStatAttach(payload)
	case etproto.OpStatDetach:
		return s.handleStatDetach(payload)
	case etproto.OpStatCreate:
		return s.handleStatCreate(payload)
	case etproto.OpStatRemove:
		return s.handleStatRemove(payload)
	case etproto.OpEvGet, etproto.OpEvGetLocal:
		return s.handleEvGet(payload)
	case etproto.OpEvPut, etproto.OpEvPutLocal:
		return s.handleEvPut(payload)
	case etproto.OpEvDump, etproto.OpEvDumpLocal:
		return s.handleEvDump(payload)
	case etproto.OpEvNew, etproto.OpEvNewLocal:
		return s.handleEvNew(payload)
	case etproto.OpWakeAttachment:
		return s.handleWakeAttachment(payload)
	case etproto.OpWakeAll:
		return s.handleWakeAll(payload)
	case etproto.OpAlive, etproto.OpWait:
		return etc.OK, nil
	case etproto.OpClose, etproto.OpForceClose:
		return etc.OK, nil
	case etproto.OpKill:
		return etc.OK, nil
	}

	switch op.Category() {
	case etproto.CategoryStationGetter:
		return s.handleStationGetter(op, payload)
	case etproto.CategoryStationSetter:
		return s.handleStationSetter(op, payload)
	case etproto.CategoryAttachmentCounter:
		return s.handleAttachmentCounter(op, payload)
	default:
		return etc.NoRemote, nil
	}
}

// timedDeadline translates the wire's millisecond field into an absolute
// deadline, with no upper clamp. Slicing a long TIMED wait into repeated
// short waits is left to the station and pool layers (etstation's
// condWaitSlice).
func timedDeadline(ms uint32) time.Time {
	return time.Now().Add(time.Duration(ms) * time.Millisecond)
}

func readUint32(b []byte, off int) uint32 {
	if off+4 > len(b) {
		return 0
	}
	return binary.BigEndian.Uint32(b[off : off+4])
}

func readString(b []byte, off int) string {
	if off+4 > len(b) {
		return ""
	}
	n := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if off+n > len(b) {
		return ""
	}
	return string(b[off : off+n])
}
