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

package etstation

import "sync"

// Registry maps a (lib, func) name pair to an executable Predicate. The
// original dynamic-loading model (dlopen a shared object, resolve a symbol)
// has no safe Go equivalent; callers instead register a closure under the
// same names ahead of time, and a station created with SelectCustom and a
// matching Lib/Func resolves it here at CreateAt time.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Predicate
}

// NewRegistry returns an empty predicate registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Predicate)}
}

// Register binds name (conventionally "lib/func") to fn, overwriting any
// previous binding.
func (r *Registry) Register(name string, fn Predicate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Lookup returns the predicate bound to name, if any.
func (r *Registry) Lookup(name string) (Predicate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

func libFuncKey(lib, fn string) string {
	return lib + "/" + fn
}
