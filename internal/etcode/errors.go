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

package etcode

import (
	"fmt"
	"runtime"
	"strings"
)

type ers struct {
	c Code
	m string
	p []error
	f runtime.Frame
}

// New builds an Error with code c, message m, and the given parents.
func New(c Code, m string, parent ...error) Error {
	e := &ers{c: c, m: m, f: callerFrame()}
	e.Add(parent...)
	return e
}

// Newf builds an Error with code c and a formatted message.
func Newf(c Code, format string, args ...interface{}) Error {
	return New(c, fmt.Sprintf(format, args...))
}

func callerFrame() runtime.Frame {
	pc := make([]uintptr, 16)
	n := runtime.Callers(3, pc)
	if n == 0 {
		return runtime.Frame{}
	}
	frames := runtime.CallersFrames(pc[:n])
	for {
		fr, more := frames.Next()
		if !strings.Contains(fr.Function, "nabbar/etbroker/internal/etcode") {
			return fr
		}
		if !more {
			return fr
		}
	}
}

func (e *ers) Error() string {
	if e.m == "" {
		return e.c.Message()
	}
	return e.m
}

func (e *ers) IsCode(c Code) bool {
	return e.c == c
}

func (e *ers) HasCode(c Code) bool {
	if e.IsCode(c) {
		return true
	}
	for _, p := range e.p {
		if pe, ok := p.(Error); ok && pe.HasCode(c) {
			return true
		}
	}
	return false
}

func (e *ers) Code() Code {
	return e.c
}

func (e *ers) Add(parent ...error) {
	for _, v := range parent {
		if v == nil {
			continue
		}
		e.p = append(e.p, v)
	}
}

func (e *ers) Parents() []error {
	return e.p
}

func (e *ers) Trace() string {
	if e.f.Function == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d %s", e.f.File, e.f.Line, e.f.Function)
}

func (e *ers) Unwrap() []error {
	return e.p
}

// Is reports whether err is an etcode.Error carrying the same code, so that
// errors.Is(err, SomeCode.Error()) works when both sides compare by code.
func (e *ers) Is(target error) bool {
	if t, ok := target.(Error); ok {
		return e.c != OK && e.c == t.Code()
	}
	return false
}

// FromCode is a convenience for the zero-parent case.
func FromCode(c Code) Error {
	return New(c, c.Message())
}
