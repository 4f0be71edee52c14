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

// Package etpool implements the fixed-size, index-addressed event pool
// (spec section C5): a contiguous data region sliced into nevents fixed
// capacity buffers, a bitset tracking which are free, and group quotas.
package etpool

const (
	// SystemOwner is the sentinel owner id meaning "owned by the system",
	// i.e. sitting on a station or central list rather than checked out.
	SystemOwner = -1
)

// Priority is the event scheduling priority.
type Priority uint8

const (
	PriorityLow Priority = iota
	PriorityHigh
)

// DataStatus records whether an event's payload is known-good.
type DataStatus uint8

const (
	StatusOK DataStatus = iota
	StatusCorrupt
	StatusPossiblyCorrupt
)

// Temp distinguishes normal pool-backed events from oversized temp events.
type Temp uint8

const (
	TempNormal Temp = iota
	TempOversized
)

// Modify declares how a remote getter intends to change an event.
type Modify uint8

const (
	ModifyNone Modify = iota
	ModifyHeader
	ModifyFull
)

// AllocMode controls how alloc behaves when the requested count can't be
// immediately satisfied.
type AllocMode uint8

const (
	AllocSleep AllocMode = iota
	AllocTimed
	AllocAsync
)

// Header is an event's metadata; Place is the stable wire identity.
type Header struct {
	Place      int
	Length     uint32
	MemSize    uint32
	Priority   Priority
	DataStatus DataStatus
	ByteOrder  uint32
	Control    []int64
	Owner      int
	Temp       Temp
	Modify     Modify
	Group      int
}
