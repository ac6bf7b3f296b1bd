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

package block

import (
	"context"
	"log/slog"
	"sync"
)

// ActionFunc consumes one item with a side effect. Returning a non-nil
// error faults the block. ActionFunc is the shape adapters/ wraps
// around real external collaborators (database drivers, object
// storage clients, ...).
type ActionFunc[T any] func(ctx context.Context, in T) error

// ActionBlock is a terminal block: it has no output, only a side
// effect per item. It is the leaf every adapters/ sink is built on.
type ActionBlock[T any] struct {
	*baseBlock
	in chan T
	fn ActionFunc[T]
}

// NewActionBlock constructs an ActionBlock backed by fn.
func NewActionBlock[T any](ctx context.Context, fn ActionFunc[T], opts ...Option) *ActionBlock[T] {
	o := resolveOptions("Action", opts)
	ctx, cancel := context.WithCancel(ctx)
	b := &ActionBlock[T]{
		baseBlock: newBaseBlock(o, cancel),
		in:        make(chan T, o.BoundedCapacity),
		fn:        fn,
	}
	var wg sync.WaitGroup
	wg.Add(o.DegreeOfParallelism)
	for i := 0; i < o.DegreeOfParallelism; i++ {
		go func() {
			defer wg.Done()
			b.worker(ctx)
		}()
	}
	go func() {
		wg.Wait()
		b.markDone()
	}()
	return b
}

func (b *ActionBlock[T]) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-b.in:
			if !ok {
				return
			}
			b.buffered.Add(1)
			err := b.fn(ctx, item)
			b.buffered.Add(-1)
			if err != nil {
				b.Fault(err)
				return
			}
		}
	}
}

// Send enqueues item, blocking until there is room or ctx is done.
func (b *ActionBlock[T]) Send(ctx context.Context, item T) error {
	select {
	case b.in <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Complete signals that no more items will be sent.
func (b *ActionBlock[T]) Complete() {
	b.mu.Lock()
	if b.completed {
		b.mu.Unlock()
		return
	}
	b.completed = true
	b.mu.Unlock()
	close(b.in)
	b.logger.Debug("block completed", slog.String("block", b.name))
}
