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
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"time"

	etc "github.com/nabbar/etbroker/internal/etcode"
	etpool "github.com/nabbar/etbroker/internal/etpool"
	etproto "github.com/nabbar/etbroker/internal/etproto"
	etstation "github.com/nabbar/etbroker/internal/etstation"
)

type client struct {
	conn  net.Conn
	cfg   Config
	hello Hello
}

func (c *client) Hello() Hello {
	return c.hello
}

// roundTrip writes one request frame and reads its matching response,
// applying cfg.RequestTimeout as a single deadline across both halves.
func (c *client) roundTrip(op etproto.Opcode, payload []byte) (etc.Code, []byte, error) {
	if c.cfg.RequestTimeout > 0 {
		_ = c.conn.SetDeadline(time.Now().Add(c.cfg.RequestTimeout))
		defer c.conn.SetDeadline(time.Time{})
	}

	if werr := etproto.WriteRequest(c.conn, etproto.RequestHeader{Opcode: op}, payload); werr != nil {
		return 0, nil, werr
	}
	hdr, resp, rerr := etproto.ReadResponse(c.conn, c.cfg.MaxPayload)
	if rerr != nil {
		return 0, nil, rerr
	}
	return hdr.Code, resp, nil
}

func codeErr(code etc.Code) error {
	return fmt.Errorf("etclient: request failed with code %s", code.String())
}

func encodeString(buf *bytes.Buffer, s string) {
	_ = binary.Write(buf, binary.BigEndian, uint32(len(s)))
	buf.WriteString(s)
}

func readString(b []byte) string {
	if len(b) < 4 {
		return ""
	}
	n := int(binary.BigEndian.Uint32(b[0:4]))
	if 4+n > len(b) {
		return ""
	}
	return string(b[4 : 4+n])
}

func (c *client) AttachMake(station string) (string, error) {
	var buf bytes.Buffer
	encodeString(&buf, station)
	code, resp, err := c.roundTrip(etproto.OpAttMake, buf.Bytes())
	if err != nil {
		return "", err
	}
	if code != etc.OK {
		return "", codeErr(code)
	}
	return readString(resp), nil
}

func (c *client) Detach(attachmentID string) error {
	var buf bytes.Buffer
	encodeString(&buf, attachmentID)
	code, _, err := c.roundTrip(etproto.OpStatDetach, buf.Bytes())
	if err != nil {
		return err
	}
	if code != etc.OK {
		return codeErr(code)
	}
	return nil
}

func (c *client) EventNew(attachmentID string, group int, mode etpool.AllocMode, timeout time.Duration) (int32, error) {
	var buf bytes.Buffer
	encodeString(&buf, attachmentID)
	_ = binary.Write(&buf, binary.BigEndian, uint32(group))
	_ = binary.Write(&buf, binary.BigEndian, uint8(mode))
	_ = binary.Write(&buf, binary.BigEndian, uint32(timeout/time.Millisecond))

	code, resp, err := c.roundTrip(etproto.OpEvNew, buf.Bytes())
	if err != nil {
		return 0, err
	}
	if code != etc.OK {
		return 0, codeErr(code)
	}
	if len(resp) < 4 {
		return 0, fmt.Errorf("etclient: short EV_NEW response")
	}
	return int32(binary.BigEndian.Uint32(resp[0:4])), nil
}

func (c *client) EventGet(attachmentID string, mode etstation.FlowModeWait, timeout time.Duration) (Event, error) {
	var buf bytes.Buffer
	encodeString(&buf, attachmentID)
	_ = binary.Write(&buf, binary.BigEndian, uint8(mode))
	_ = binary.Write(&buf, binary.BigEndian, uint32(timeout/time.Millisecond))

	code, resp, err := c.roundTrip(etproto.OpEvGet, buf.Bytes())
	if err != nil {
		return Event{}, err
	}
	if code != etc.OK {
		return Event{}, codeErr(code)
	}
	return decodeEventFrame(resp)
}

func decodeEventFrame(b []byte) (Event, error) {
	if len(b) < 4+4+4+1+1+4+4 {
		return Event{}, fmt.Errorf("etclient: short event frame")
	}
	off := 0
	place := int32(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	length := binary.BigEndian.Uint32(b[off : off+4])
	off += 4
	memsize := binary.BigEndian.Uint32(b[off : off+4])
	off += 4
	prio := etpool.Priority(b[off])
	off++
	status := etpool.DataStatus(b[off])
	off++
	border := binary.BigEndian.Uint32(b[off : off+4])
	off += 4
	nControl := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4

	control := make([]int64, 0, nControl)
	for i := 0; i < nControl; i++ {
		if off+8 > len(b) {
			return Event{}, fmt.Errorf("etclient: truncated control words")
		}
		control = append(control, int64(binary.BigEndian.Uint64(b[off:off+8])))
		off += 8
	}

	data := b[off:]
	if int(length) <= len(data) {
		data = data[:length]
	}

	return Event{
		Place:      place,
		Length:     length,
		MemSize:    memsize,
		Priority:   prio,
		DataStatus: status,
		ByteOrder:  border,
		Control:    control,
		Data:       data,
	}, nil
}

func (c *client) EventPut(attachmentID string, ev Event, modify etpool.Modify) error {
	var buf bytes.Buffer
	encodeString(&buf, attachmentID)
	_ = binary.Write(&buf, binary.BigEndian, ev.Place)
	_ = binary.Write(&buf, binary.BigEndian, ev.Length)
	_ = binary.Write(&buf, binary.BigEndian, ev.MemSize)
	_ = binary.Write(&buf, binary.BigEndian, uint8(ev.Priority))
	_ = binary.Write(&buf, binary.BigEndian, uint8(ev.DataStatus))
	_ = binary.Write(&buf, binary.BigEndian, ev.ByteOrder)
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ev.Control)))
	for _, w := range ev.Control {
		_ = binary.Write(&buf, binary.BigEndian, w)
	}
	_ = binary.Write(&buf, binary.BigEndian, uint8(modify))
	if modify == etpool.ModifyFull {
		buf.Write(ev.Data)
	}

	code, _, err := c.roundTrip(etproto.OpEvPut, buf.Bytes())
	if err != nil {
		return err
	}
	if code != etc.OK {
		return codeErr(code)
	}
	return nil
}

func (c *client) EventDump(attachmentID string, place int32) error {
	var buf bytes.Buffer
	encodeString(&buf, attachmentID)
	_ = binary.Write(&buf, binary.BigEndian, place)

	code, _, err := c.roundTrip(etproto.OpEvDump, buf.Bytes())
	if err != nil {
		return err
	}
	if code != etc.OK {
		return codeErr(code)
	}
	return nil
}

func (c *client) WakeAttachment(attachmentID string) error {
	var buf bytes.Buffer
	encodeString(&buf, attachmentID)
	code, _, err := c.roundTrip(etproto.OpWakeAttachment, buf.Bytes())
	if err != nil {
		return err
	}
	if code != etc.OK {
		return codeErr(code)
	}
	return nil
}

func (c *client) WakeStation(station string) error {
	var buf bytes.Buffer
	encodeString(&buf, station)
	code, _, err := c.roundTrip(etproto.OpWakeAll, buf.Bytes())
	if err != nil {
		return err
	}
	if code != etc.OK {
		return codeErr(code)
	}
	return nil
}

func (c *client) Close() error {
	_, _, _ = c.roundTrip(etproto.OpClose, nil)
	return c.conn.Close()
}
