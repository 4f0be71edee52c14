/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

// Package etcode carries the broker's error-kind taxonomy: a fixed set of
// named codes (mirroring spec section 7) instead of ad-hoc sentinel errors,
// with parent-chaining and stack capture on top of the standard error
// interface.
package etcode

import (
	"strconv"
)

// idMsgFct stores the default message for every registered code.
var idMsgFct = make(map[Code]string)

// Code is the numeric error kind carried by every broker operation.
type Code uint16

const (
	OK       Code = 0
	Timeout  Code = 100
	Wakeup   Code = 101
	Empty    Code = 102
	Busy     Code = 103
	Dead     Code = 104
	Read     Code = 200
	Write    Code = 201
	Network  Code = 202
	Socket   Code = 203
	TooMany  Code = 300
	Exists   Code = 301
	TooBig   Code = 302
	NoMem    Code = 303
	BadArg   Code = 400
	Closed   Code = 401
	Remote   Code = 500
	NoRemote Code = 501
	Unknown  Code = 900
)

func init() {
	idMsgFct[OK] = "ok"
	idMsgFct[Timeout] = "deadline expired"
	idMsgFct[Wakeup] = "blocking call woken by cooperative quit"
	idMsgFct[Empty] = "no event available"
	idMsgFct[Busy] = "station already attached (single-user)"
	idMsgFct[Dead] = "system marked dead"
	idMsgFct[Read] = "read fault"
	idMsgFct[Write] = "write fault"
	idMsgFct[Network] = "network fault"
	idMsgFct[Socket] = "socket fault"
	idMsgFct[TooMany] = "too many responders or limit reached"
	idMsgFct[Exists] = "name already in use"
	idMsgFct[TooBig] = "event exceeds peer word-width safety threshold"
	idMsgFct[NoMem] = "allocation failed"
	idMsgFct[BadArg] = "contract violation by caller"
	idMsgFct[Closed] = "operation on a closed system"
	idMsgFct[Remote] = "remote-only limitation"
	idMsgFct[NoRemote] = "unsupported remote operation"
	idMsgFct[Unknown] = "unclassified error"
}

// Uint16 returns the raw wire-shaped code value.
func (c Code) Uint16() uint16 {
	return uint16(c)
}

// String implements fmt.Stringer, returning the numeric code as text.
func (c Code) String() string {
	return strconv.Itoa(int(c))
}

// Message returns the human-readable description registered for this code.
func (c Code) Message() string {
	if m, ok := idMsgFct[c]; ok {
		return m
	}
	return idMsgFct[Unknown]
}

// Error builds a new Error value carrying this code, with optional parents.
func (c Code) Error(parent ...error) Error {
	return New(c, c.Message(), parent...)
}

// Errorf builds a new Error value with a formatted message, keeping the code.
func (c Code) Errorf(format string, args ...interface{}) Error {
	return Newf(c, format, args...)
}
