/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package etlog wraps logrus with the field names the broker uses
// consistently across stations, attachments, and sessions.
package etlog

import (
	"github.com/sirupsen/logrus"
)

const (
	FieldStation    = "station"
	FieldAttachment = "attachment"
	FieldSession    = "session"
	FieldOpcode     = "opcode"
	FieldEvent      = "event"
	FieldCode       = "code"
	FieldRemote     = "remote"
)

// Fields is a typed alias kept distinct from logrus.Fields so callers don't
// need to import logrus directly just to log.
type Fields = logrus.Fields

// Logger is the subset of logrus used across the broker. A FuncLog factory
// builds one per component, mirroring the teacher's RegisterDefaultLogger
// wiring (github.com/nabbar/golib/config's FuncLog/RegisterDefaultLogger).
type Logger = *logrus.Entry

// FuncLog returns a configured Logger; components receive one at construction.
type FuncLog func() Logger

// New builds a base logger at the given level, JSON or text per json flag.
func New(level logrus.Level, json bool) Logger {
	l := logrus.New()
	l.SetLevel(level)
	if json {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logrus.NewEntry(l)
}
