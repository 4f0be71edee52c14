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

// Error extends the standard error with a code, a parent chain, and the
// call-site trace captured when it was created.
type Error interface {
	error

	// IsCode reports whether this error's own code matches c.
	IsCode(c Code) bool
	// HasCode reports whether this error or any parent carries c.
	HasCode(c Code) bool
	// Code returns this error's own code.
	Code() Code

	// Add appends non-nil errors as parents of this one.
	Add(parent ...error)
	// Parents returns the direct parent chain.
	Parents() []error

	// Trace returns "file:line func" for the call site that created this error.
	Trace() string

	// Unwrap exposes the parent chain to errors.Is/errors.As.
	Unwrap() []error
}
