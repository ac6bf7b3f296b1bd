//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 The flowgraph authors
//
// This file is part of flowgraph.
//
// flowgraph is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// flowgraph is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with flowgraph. If not, see https://www.gnu.org/licenses/.

package core

import (
	"context"
	"sync"
)

// Future is a one-shot, memoized completion signal. It resolves exactly
// once, to either nil (success) or an error (fault/cancellation), and
// every caller of Wait or Done observes the same result regardless of
// how many times or in what order they call in.
type Future struct {
	done   chan struct{}
	once   sync.Once
	mu     sync.RWMutex
	result error
}

// NewFuture returns an unresolved Future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolve settles the future with err. Only the first call has any
// effect; subsequent calls are no-ops, matching the "exactly once"
// completion guarantee containers rely on.
func (f *Future) Resolve(err error) {
	f.once.Do(func() {
		f.mu.Lock()
		f.result = err
		f.mu.Unlock()
		close(f.done)
	})
}

// Done returns a channel that is closed once the future resolves.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result returns the settled error. It must only be called after Done
// has been observed closed; calling it before resolution returns nil
// even though the future is still pending.
func (f *Future) Result() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.result
}

// IsResolved reports whether Resolve has already run.
func (f *Future) IsResolved() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the future resolves or ctx is done, whichever comes
// first. A context cancellation does not resolve the future itself —
// it only unblocks this particular waiter.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.Result()
	case <-ctx.Done():
		return ctx.Err()
	}
}
