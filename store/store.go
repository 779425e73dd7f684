// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package store holds state shared between the handlers of a controller.
package store

import (
	"context"
	"sync/atomic"

	"go.astrophena.name/tinyweb/syncx"
)

// Counter is a set of named counters safe for concurrent use.
type Counter interface {
	// Incr adds one to the counter key and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)
	// Get returns the value of the counter key, zero if it was never
	// incremented.
	Get(ctx context.Context, key string) (int64, error)
}

// Memory is a Counter kept in process memory. The zero value is ready to
// use.
type Memory struct {
	m syncx.Map[string, *atomic.Int64]
}

var _ Counter = (*Memory)(nil)

// Incr implements [Counter].
func (m *Memory) Incr(_ context.Context, key string) (int64, error) {
	n, ok := m.m.Load(key)
	if !ok {
		n, _ = m.m.LoadOrStore(key, new(atomic.Int64))
	}
	return n.Add(1), nil
}

// Get implements [Counter].
func (m *Memory) Get(_ context.Context, key string) (int64, error) {
	if n, ok := m.m.Load(key); ok {
		return n.Load(), nil
	}
	return 0, nil
}
