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

// TransformFunc maps one input item to one output item. Returning a
// non-nil error faults the block.
type TransformFunc[TIn, TOut any] func(ctx context.Context, in TIn) (TOut, error)

// TransformBlock applies fn to every item it receives and forwards the
// result downstream. Its degree of parallelism controls how many
// goroutines call fn concurrently; output ordering is not preserved
// across workers when DegreeOfParallelism > 1.
type TransformBlock[TIn, TOut any] struct {
	*baseBlock
	in  chan TIn
	out chan TOut
	fn  TransformFunc[TIn, TOut]
}

// NewTransformBlock constructs a TransformBlock backed by fn.
func NewTransformBlock[TIn, TOut any](ctx context.Context, fn TransformFunc[TIn, TOut], opts ...Option) *TransformBlock[TIn, TOut] {
	o := resolveOptions("Transform", opts)
	ctx, cancel := context.WithCancel(ctx)
	b := &TransformBlock[TIn, TOut]{
		baseBlock: newBaseBlock(o, cancel),
		in:        make(chan TIn, o.BoundedCapacity),
		out:       make(chan TOut, o.BoundedCapacity),
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
		close(b.out)
		b.markDone()
	}()
	return b
}

func (b *TransformBlock[TIn, TOut]) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-b.in:
			if !ok {
				return
			}
			b.buffered.Add(1)
			result, err := b.fn(ctx, item)
			b.buffered.Add(-1)
			if err != nil {
				b.Fault(err)
				return
			}
			select {
			case b.out <- result:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Send enqueues item, blocking until there is room or ctx is done.
func (b *TransformBlock[TIn, TOut]) Send(ctx context.Context, item TIn) error {
	select {
	case b.in <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Output returns the channel downstream readers (or a Link) drain.
func (b *TransformBlock[TIn, TOut]) Output() <-chan TOut { return b.out }

// Complete signals that no more items will be sent.
func (b *TransformBlock[TIn, TOut]) Complete() {
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
