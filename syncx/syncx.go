// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package syncx contains useful synchronization primitives.
package syncx

import "sync"

// Lazy represents a lazily computed value.
type Lazy[T any] struct {
	once sync.Once
	val  T
	err  error
}

// Get returns T, calling f to compute it, if necessary.
func (l *Lazy[T]) Get(f func() T) T {
	l.once.Do(func() { l.val = f() })
	return l.val
}

// GetErr returns T and an error, calling f to compute them, if necessary.
func (l *Lazy[T]) GetErr(f func() (T, error)) (T, error) {
	l.once.Do(func() { l.val, l.err = f() })
	return l.val, l.err
}

// Pool runs functions on at most a fixed number of goroutines at a time.
//
// Unlike a semaphore held by the caller, [Pool.Go] never blocks: work
// submitted while every slot is busy waits in an unbounded queue until a
// slot frees up.
type Pool struct {
	wg    sync.WaitGroup
	slots chan struct{}
}

// NewPool returns a [Pool] with size slots. A size below one is treated
// as one.
func NewPool(size int) *Pool {
	return &Pool{slots: make(chan struct{}, max(size, 1))}
}

// Go queues f to run once a slot is free.
func (p *Pool) Go(f func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.slots <- struct{}{}
		defer func() { <-p.slots }()
		f()
	}()
}

// Size returns the number of slots.
func (p *Pool) Size() int { return cap(p.slots) }

// Busy returns the number of functions running right now.
func (p *Pool) Busy() int { return len(p.slots) }

// Wait blocks until every queued and running function has returned.
func (p *Pool) Wait() { p.wg.Wait() }

// Map is a generic version of [sync.Map].
type Map[K comparable, V any] struct{ m sync.Map }

// Load is [sync.Map.Load].
func (m *Map[K, V]) Load(key K) (value V, ok bool) {
	val, ok := m.m.Load(key)
	if !ok {
		return value, false
	}
	return val.(V), true
}

// LoadOrStore is [sync.Map.LoadOrStore].
func (m *Map[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	v, loaded := m.m.LoadOrStore(key, value)
	return v.(V), loaded
}
