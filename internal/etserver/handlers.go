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
	"bytes"
	"encoding/binary"

	etc "github.com/nabbar/etbroker/internal/etcode"
	etpool "github.com/nabbar/etbroker/internal/etpool"
	etproto "github.com/nabbar/etbroker/internal/etproto"
	etstation "github.com/nabbar/etbroker/internal/etstation"
)

func encodeString(buf *bytes.Buffer, s string) {
	_ = binary.Write(buf, binary.BigEndian, uint32(len(s)))
	buf.WriteString(s)
}

// handleAttMake attaches a fresh attachment to the named station. Payload:
// station-name. Response: attachment-id.
func (s *session) handleAttMake(payload []byte) (etc.Code, []byte) {
	name := readString(payload, 0)
	remote := ""
	if s.conn.RemoteAddr() != nil {
		remote = s.conn.RemoteAddr().String()
	}
	att, err := s.mgr.Attach(name, 0, "", remote)
	if err != nil {
		return err.Code(), nil
	}
	var buf bytes.Buffer
	encodeString(&buf, att.ID())
	return etc.OK, buf.Bytes()
}

func (s *session) handleStatAttach(payload []byte) (etc.Code, []byte) {
	return s.handleAttMake(payload)
}

// handleStatDetach releases one attachment this session holds. Payload:
// attachment-id.
func (s *session) handleStatDetach(payload []byte) (etc.Code, []byte) {
	id := readString(payload, 0)
	if err := s.mgr.Detach(id); err != nil {
		return err.Code(), nil
	}
	return etc.OK, nil
}

// handleStatCreate builds a station at the given chain position. Payload:
// name | position(int32, -1=END) | flow | user | restore | block |
// prescale(uint32) | cue(uint32) | selectMode | nSelectWords |
// selectWords[int64]... | groupWith.
func (s *session) handleStatCreate(payload []byte) (etc.Code, []byte) {
	off := 0
	name := readString(payload, off)
	off += 4 + len(name)

	position := int32(readUint32(payload, off))
	off += 4

	if off+6 > len(payload) {
		return etc.BadArg, nil
	}
	flow := etstation.FlowMode(payload[off])
	user := etstation.UserMode(payload[off+1])
	restore := etstation.RestoreMode(payload[off+2])
	block := etstation.BlockMode(payload[off+3])
	off += 4

	prescale := int(readUint32(payload, off))
	off += 4
	cue := int(readUint32(payload, off))
	off += 4

	if off >= len(payload) {
		return etc.BadArg, nil
	}
	selMode := etstation.SelectMode(payload[off])
	off++

	nWords := int(readUint32(payload, off))
	off += 4
	words := make([]int64, 0, nWords)
	for i := 0; i < nWords; i++ {
		if off+8 > len(payload) {
			return etc.BadArg, nil
		}
		words = append(words, int64(binary.BigEndian.Uint64(payload[off:off+8])))
		off += 8
	}

	groupWith := readString(payload, off)

	cfg := etstation.Config{
		Name:        name,
		FlowMode:    flow,
		UserMode:    user,
		RestoreMode: restore,
		BlockMode:   block,
		Prescale:    prescale,
		Cue:         cue,
		SelectMode:  selMode,
		Select:      words,
		GroupWith:   groupWith,
	}

	pos := int(position)
	if pos < 0 {
		chain := s.cfg.System.List()
		pos = chain[len(chain)-1].Position() + 1
	}
	st, err := s.cfg.System.CreateAt(cfg, pos)
	if err != nil {
		return err.Code(), nil
	}
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, uint32(st.Position()))
	return etc.OK, buf.Bytes()
}

// handleStatRemove deletes a station by name. Payload: name.
func (s *session) handleStatRemove(payload []byte) (etc.Code, []byte) {
	name := readString(payload, 0)
	if err := s.cfg.System.Remove(name); err != nil {
		return err.Code(), nil
	}
	return etc.OK, nil
}

// handleEvGet pulls the next queued event for an attachment. Payload:
// attachment-id | mode(uint8) | timeout-ms(uint32). Response is the event
// transfer frame from spec 4.4: place | length | memsize | priority/status |
// byteorder | nControl | control[...] | payload.
func (s *session) handleEvGet(payload []byte) (etc.Code, []byte) {
	idLen := int(readUint32(payload, 0))
	id := readString(payload, 0)
	off := 4 + idLen
	if off+5 > len(payload) {
		return etc.BadArg, nil
	}
	mode := etstation.FlowModeWait(payload[off])
	ms := readUint32(payload, off+1)

	att, ok := s.mgr.Lookup(id)
	if !ok {
		return etc.BadArg, nil
	}

	idx, err := att.Get(s.cfg.System, mode, timedDeadline(ms))
	if err != nil {
		return err.Code(), nil
	}

	pool := s.cfg.System.Pool()
	hdr, herr := pool.Header(idx)
	if herr != nil {
		return herr.Code(), nil
	}
	data, derr := pool.Data(idx)
	if derr != nil {
		return derr.Code(), nil
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.CountTransfer("get")
	}
	return etc.OK, encodeEventFrame(hdr, data)
}

func encodeEventFrame(hdr etpool.Header, data []byte) []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, int32(hdr.Place))
	_ = binary.Write(&buf, binary.BigEndian, hdr.Length)
	_ = binary.Write(&buf, binary.BigEndian, hdr.MemSize)
	_ = binary.Write(&buf, binary.BigEndian, uint8(hdr.Priority))
	_ = binary.Write(&buf, binary.BigEndian, uint8(hdr.DataStatus))
	_ = binary.Write(&buf, binary.BigEndian, hdr.ByteOrder)
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(hdr.Control)))
	for _, c := range hdr.Control {
		_ = binary.Write(&buf, binary.BigEndian, c)
	}
	payload := data
	if int(hdr.Length) <= len(data) {
		payload = data[:hdr.Length]
	}
	buf.Write(payload)
	return buf.Bytes()
}

// handleEvPut hands an event back from an attachment. Payload: attachment-id
// | place(int32) | length | memsize | priority | datastatus | byteorder |
// nControl | control[...] | modify(uint8) | payload iff modify==FULL.
func (s *session) handleEvPut(payload []byte) (etc.Code, []byte) {
	idLen := int(readUint32(payload, 0))
	id := readString(payload, 0)
	off := 4 + idLen

	if off+4 > len(payload) {
		return etc.BadArg, nil
	}
	place := int(int32(readUint32(payload, off)))
	off += 4

	hdr, nOff, perr := decodeEventHeaderFields(payload, off, place)
	if perr != etc.OK {
		return perr, nil
	}
	off = nOff

	if off >= len(payload) {
		return etc.BadArg, nil
	}
	hdr.Modify = etpool.Modify(payload[off])
	off++

	att, ok := s.mgr.Lookup(id)
	if !ok {
		return etc.BadArg, nil
	}

	pool := s.cfg.System.Pool()
	if hdr.Modify == etpool.ModifyFull {
		data, derr := pool.Data(place)
		if derr != nil {
			return derr.Code(), nil
		}
		n := copy(data, payload[off:])
		hdr.Length = uint32(n)
	}
	if serr := pool.SetHeader(place, hdr); serr != nil {
		return serr.Code(), nil
	}

	if puterr := att.Put(s.cfg.System, place); puterr != nil {
		return puterr.Code(), nil
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.CountTransfer("put")
	}
	return etc.OK, nil
}

func decodeEventHeaderFields(payload []byte, off int, place int) (etpool.Header, int, etc.Code) {
	if off+4+4+1+1+4+4 > len(payload) {
		return etpool.Header{}, off, etc.BadArg
	}
	var h etpool.Header
	h.Place = place
	h.Length = readUint32(payload, off)
	off += 4
	h.MemSize = readUint32(payload, off)
	off += 4
	h.Priority = etpool.Priority(payload[off])
	off++
	h.DataStatus = etpool.DataStatus(payload[off])
	off++
	h.ByteOrder = readUint32(payload, off)
	off += 4
	nControl := int(readUint32(payload, off))
	off += 4
	h.Control = make([]int64, 0, nControl)
	for i := 0; i < nControl; i++ {
		if off+8 > len(payload) {
			return etpool.Header{}, off, etc.BadArg
		}
		h.Control = append(h.Control, int64(binary.BigEndian.Uint64(payload[off:off+8])))
		off += 8
	}
	return h, off, etc.OK
}

// handleEvDump discards an owned event directly to grand central. Payload:
// attachment-id | place(int32).
func (s *session) handleEvDump(payload []byte) (etc.Code, []byte) {
	idLen := int(readUint32(payload, 0))
	id := readString(payload, 0)
	off := 4 + idLen
	if off+4 > len(payload) {
		return etc.BadArg, nil
	}
	place := int(int32(readUint32(payload, off)))

	att, ok := s.mgr.Lookup(id)
	if !ok {
		return etc.BadArg, nil
	}
	if err := att.Dump(s.cfg.System, place); err != nil {
		return err.Code(), nil
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.CountTransfer("dump")
	}
	return etc.OK, nil
}

// handleEvNew allocates a fresh event for an attachment to fill. Payload:
// attachment-id | group(uint32) | mode(uint8) | timeout-ms(uint32).
func (s *session) handleEvNew(payload []byte) (etc.Code, []byte) {
	idLen := int(readUint32(payload, 0))
	id := readString(payload, 0)
	off := 4 + idLen
	if off+9 > len(payload) {
		return etc.BadArg, nil
	}
	group := int(readUint32(payload, off))
	off += 4
	mode := etpool.AllocMode(payload[off])
	off++
	ms := readUint32(payload, off)

	att, ok := s.mgr.Lookup(id)
	if !ok {
		return etc.BadArg, nil
	}

	idxs, err := s.cfg.System.Pool().Alloc(group, 1, mode, timedDeadline(ms), nil)
	if err != nil {
		return err.Code(), nil
	}
	att.NoteCreated(idxs[0])
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.CountTransfer("new")
	}

	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, int32(idxs[0]))
	return etc.OK, buf.Bytes()
}

// handleWakeAttachment raises the quit flag on one attachment. Payload:
// attachment-id.
func (s *session) handleWakeAttachment(payload []byte) (etc.Code, []byte) {
	id := readString(payload, 0)
	if err := s.mgr.WakeAttachment(id); err != nil {
		return err.Code(), nil
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.CountTransfer("wakeup")
	}
	return etc.OK, nil
}

// handleWakeAll raises the quit flag on every attachment bound to a named
// station. Payload: station-name.
func (s *session) handleWakeAll(payload []byte) (etc.Code, []byte) {
	name := readString(payload, 0)
	s.mgr.WakeStation(name)
	return etc.OK, nil
}

// handleStationGetter answers one of the dense station int-getter opcodes.
// Payload: station-name.
func (s *session) handleStationGetter(op etproto.Opcode, payload []byte) (etc.Code, []byte) {
	name := readString(payload, 0)
	st, ok := s.cfg.System.Lookup(name)
	if !ok {
		return etc.BadArg, nil
	}

	var v int64
	switch op {
	case etproto.OpStatGetPosition:
		v = int64(st.Position())
	case etproto.OpStatIsAttached:
		if st.AttachCount() > 0 {
			v = 1
		}
	case etproto.OpStatExists:
		v = 1
	case etproto.OpStatGetAttCount:
		v = int64(st.AttachCount())
	case etproto.OpStatGetStatus:
		v = int64(st.State())
	case etproto.OpStatGetInCount:
		v = int64(st.InputCount())
	case etproto.OpStatGetBlock:
		v = int64(st.BlockMode())
	case etproto.OpStatGetUser:
		v = int64(st.UserMode())
	case etproto.OpStatGetRestore:
		v = int64(st.RestoreMode())
	case etproto.OpStatGetPrescale:
		v = int64(st.Prescale())
	case etproto.OpStatGetCue:
		v = int64(st.Cue())
	default:
		return etc.NoRemote, nil
	}

	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, v)
	return etc.OK, buf.Bytes()
}

// handleStationSetter applies one of the dense station int-setter opcodes.
// Payload: station-name | value(int64).
func (s *session) handleStationSetter(op etproto.Opcode, payload []byte) (etc.Code, []byte) {
	nameLen := int(readUint32(payload, 0))
	name := readString(payload, 0)
	off := 4 + nameLen
	if off+8 > len(payload) {
		return etc.BadArg, nil
	}
	v := int64(binary.BigEndian.Uint64(payload[off : off+8]))

	st, ok := s.cfg.System.Lookup(name)
	if !ok {
		return etc.BadArg, nil
	}

	switch op {
	case etproto.OpStatSetBlock:
		st.SetBlockMode(etstation.BlockMode(v))
	case etproto.OpStatSetUser:
		st.SetUserMode(etstation.UserMode(v))
	case etproto.OpStatSetRestore:
		st.SetRestoreMode(etstation.RestoreMode(v))
	case etproto.OpStatSetPrescale:
		st.SetPrescale(int(v))
	case etproto.OpStatSetCue:
		st.SetCue(int(v))
	default:
		return etc.NoRemote, nil
	}
	return etc.OK, nil
}

// handleAttachmentCounter answers one of the attachment 64-bit counter
// getters. Payload: attachment-id.
func (s *session) handleAttachmentCounter(op etproto.Opcode, payload []byte) (etc.Code, []byte) {
	id := readString(payload, 0)
	att, ok := s.mgr.Lookup(id)
	if !ok {
		return etc.BadArg, nil
	}
	counts := att.Counters()

	var v uint64
	switch op {
	case etproto.OpAttPut:
		v = counts.Put
	case etproto.OpAttGet:
		v = counts.Got
	case etproto.OpAttDump:
		v = counts.Dumped
	default:
		v = counts.Made
	}

	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, v)
	return etc.OK, buf.Bytes()
}
