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

// Package etctx provides a cancelable root context paired with a generic
// concurrent map, used to carry per-process (config) and per-session
// (attachment, socket) scoped state without a global variable.
package etctx

import (
	"context"
	"sync"
)

// FuncWalk is called for each key/value pair during Walk; return false to stop.
type FuncWalk[T comparable] func(key T, val interface{}) bool

// Config is a cancelable context plus a concurrent key/value store scoped to
// the same lifetime: once the context is canceled, the store is cleared and
// further Store calls are ignored.
type Config[T comparable] interface {
	context.Context

	Cancel()
	Store(key T, val interface{})
	Load(key T) (interface{}, bool)
	Delete(key T)
	Walk(fct FuncWalk[T])
	Clean()
}

type cfg[T comparable] struct {
	context.Context
	cnl context.CancelFunc
	mu  sync.Mutex
	m   map[T]interface{}
}

// New builds a Config rooted in parent (context.Background() if nil).
func New[T comparable](parent context.Context) Config[T] {
	if parent == nil {
		parent = context.Background()
	}
	c, cnl := context.WithCancel(parent)
	return &cfg[T]{Context: c, cnl: cnl, m: make(map[T]interface{})}
}

func (c *cfg[T]) Cancel() {
	c.cnl()
	c.Clean()
}

func (c *cfg[T]) Clean() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[T]interface{})
}

func (c *cfg[T]) Store(key T, val interface{}) {
	if c.Err() != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if val == nil {
		delete(c.m, key)
		return
	}
	c.m[key] = val
}

func (c *cfg[T]) Load(key T) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *cfg[T]) Delete(key T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
}

func (c *cfg[T]) Walk(fct FuncWalk[T]) {
	c.mu.Lock()
	snap := make(map[T]interface{}, len(c.m))
	for k, v := range c.m {
		snap[k] = v
	}
	c.mu.Unlock()

	for k, v := range snap {
		if !fct(k, v) {
			return
		}
	}
}
